package portalcore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeQueryService serves canned status data and counts fetches.
type fakeQueryService struct {
	mu sync.Mutex

	status      *TwoFactorStatus
	statusErr   error
	rules       []IPRestriction
	rulesErr    error
	defaultRule *IPDefaultRule
	defaultErr  error

	statusCalls int
}

func newFakeQueryService() *fakeQueryService {
	return &fakeQueryService{
		status: &TwoFactorStatus{
			SMS: []SMSEntry{{ID: 11, PhoneNumber: "+33600000001", Status: MechanismEnabled}},
			BackupCode: &BackupCodeStatus{
				Remaining: 8,
				Status:    MechanismEnabled,
			},
		},
		rules: []IPRestriction{
			{ID: 21, IP: "192.0.2.0/24", Rule: IPRuleAccept},
		},
		defaultRule: &IPDefaultRule{Rule: IPRuleDeny},
	}
}

func (f *fakeQueryService) TwoFactorStatus(context.Context) (*TwoFactorStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	out := *f.status
	return &out, nil
}

func (f *fakeQueryService) IPRestrictions(context.Context) ([]IPRestriction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rulesErr != nil {
		return nil, f.rulesErr
	}
	return append([]IPRestriction(nil), f.rules...), nil
}

func (f *fakeQueryService) IPDefaultRule(context.Context) (*IPDefaultRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.defaultErr != nil {
		return nil, f.defaultErr
	}
	out := *f.defaultRule
	return &out, nil
}

func (f *fakeQueryService) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}

// fakeMutationService delegates each operation to an optional function
// field; nil fields succeed.
type fakeMutationService struct {
	addSMS          func(ctx context.Context, phone string) (int64, error)
	sendSMSCode     func(ctx context.Context, id int64) error
	validateSMS     func(ctx context.Context, id int64, code string) error
	deleteSMS       func(ctx context.Context, id int64) error
	createTOTP      func(ctx context.Context) (*TOTPSecret, error)
	validateTOTP    func(ctx context.Context, id int64, code string) error
	deleteTOTP      func(ctx context.Context, id int64) error
	registerU2F     func(ctx context.Context) (*U2FRegistration, error)
	deleteU2F       func(ctx context.Context, id int64) error
	generateBackup  func(ctx context.Context) ([]string, error)
	validateBackup  func(ctx context.Context, code string) error
	disable2FA      func(ctx context.Context, code string) error
	addIP           func(ctx context.Context, ip string, rule IPRule, warning bool) error
	deleteIP        func(ctx context.Context, id int64) error
	passwordChange  func(ctx context.Context) error
}

func (f *fakeMutationService) AddSMS(ctx context.Context, phone string) (int64, error) {
	if f.addSMS != nil {
		return f.addSMS(ctx, phone)
	}
	return 101, nil
}

func (f *fakeMutationService) SendSMSCode(ctx context.Context, id int64) error {
	if f.sendSMSCode != nil {
		return f.sendSMSCode(ctx, id)
	}
	return nil
}

func (f *fakeMutationService) ValidateSMS(ctx context.Context, id int64, code string) error {
	if f.validateSMS != nil {
		return f.validateSMS(ctx, id, code)
	}
	return nil
}

func (f *fakeMutationService) DeleteSMS(ctx context.Context, id int64) error {
	if f.deleteSMS != nil {
		return f.deleteSMS(ctx, id)
	}
	return nil
}

func (f *fakeMutationService) CreateTOTP(ctx context.Context) (*TOTPSecret, error) {
	if f.createTOTP != nil {
		return f.createTOTP(ctx)
	}
	return &TOTPSecret{ID: 301, Secret: "JBSWY3DPEHPK3PXP", URI: "otpauth://totp/demo"}, nil
}

func (f *fakeMutationService) ValidateTOTP(ctx context.Context, id int64, code string) error {
	if f.validateTOTP != nil {
		return f.validateTOTP(ctx, id, code)
	}
	return nil
}

func (f *fakeMutationService) DeleteTOTP(ctx context.Context, id int64) error {
	if f.deleteTOTP != nil {
		return f.deleteTOTP(ctx, id)
	}
	return nil
}

func (f *fakeMutationService) RegisterU2F(ctx context.Context) (*U2FRegistration, error) {
	if f.registerU2F != nil {
		return f.registerU2F(ctx)
	}
	return &U2FRegistration{ID: 401, AppID: "https://portal.example.net", Challenge: "c", Version: "U2F_V2"}, nil
}

func (f *fakeMutationService) DeleteU2F(ctx context.Context, id int64) error {
	if f.deleteU2F != nil {
		return f.deleteU2F(ctx, id)
	}
	return nil
}

func (f *fakeMutationService) GenerateBackupCodes(ctx context.Context) ([]string, error) {
	if f.generateBackup != nil {
		return f.generateBackup(ctx)
	}
	return []string{"aaaa-bbbb", "cccc-dddd"}, nil
}

func (f *fakeMutationService) ValidateBackupCode(ctx context.Context, code string) error {
	if f.validateBackup != nil {
		return f.validateBackup(ctx, code)
	}
	return nil
}

func (f *fakeMutationService) Disable2FA(ctx context.Context, code string) error {
	if f.disable2FA != nil {
		return f.disable2FA(ctx, code)
	}
	return nil
}

func (f *fakeMutationService) AddIPRestriction(ctx context.Context, ip string, rule IPRule, warning bool) error {
	if f.addIP != nil {
		return f.addIP(ctx, ip, rule, warning)
	}
	return nil
}

func (f *fakeMutationService) DeleteIPRestriction(ctx context.Context, id int64) error {
	if f.deleteIP != nil {
		return f.deleteIP(ctx, id)
	}
	return nil
}

func (f *fakeMutationService) RequestPasswordChange(ctx context.Context) error {
	if f.passwordChange != nil {
		return f.passwordChange(ctx)
	}
	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.API.Endpoint = "https://api.test.invalid"
	cfg.Audit.Enabled = false
	return cfg
}

// newTestPortal builds a portal with an in-memory store and fake security
// services, bypassing the remote API entirely.
func newTestPortal(t *testing.T) (*Portal, *fakeQueryService, *fakeMutationService) {
	t.Helper()

	portal, err := New().WithConfig(testConfig()).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(portal.Close)

	query := newFakeQueryService()
	mutate := &fakeMutationService{}
	portal.controller = newSecurityController(portal, query, mutate)
	return portal, query, mutate
}

func authenticate(t *testing.T, portal *Portal) {
	t.Helper()
	portal.setSession(Session{
		Credential: &Credential{AppKey: "ak", AppSecret: "as", ConsumerKey: "ck"},
		User:       &UserProfile{Nichandle: "xx1234-ovh", Email: "x@example.net", AuthMethod: "account"},
		Status:     StatusAuthenticated,
	})
}

// remoteAPIStub is a configurable fake of the remote account API for the
// session lifecycle tests.
type remoteAPIStub struct {
	t *testing.T

	credentialStatus int
	credential       map[string]any
	meStatus         int
	me               map[string]any

	meCalls int

	bootstrapApp      string
	bootstrapSecret   string
	bootstrapConsumer string
}

func newRemoteAPIStub(t *testing.T) *remoteAPIStub {
	return &remoteAPIStub{
		t:                t,
		credentialStatus: http.StatusOK,
		credential: map[string]any{
			"consumerKey":   "ck-1",
			"state":         "pendingValidation",
			"validationUrl": "https://validate.example.net/grant/1",
		},
		meStatus: http.StatusOK,
		me: map[string]any{
			"nichandle":    "xx1234-ovh",
			"email":        "x@example.net",
			"firstname":    "Xavier",
			"name":         "Example",
			"supportLevel": "standard",
			"auth":         "account",
			"isTrusted":    true,
		},
	}
}

func (s *remoteAPIStub) serve(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v6/auth/credential", func(w http.ResponseWriter, r *http.Request) {
		s.bootstrapApp = r.Header.Get("X-Portal-Application")
		s.bootstrapSecret = r.Header.Get("X-Portal-Secret")
		s.bootstrapConsumer = r.Header.Get("X-Portal-Consumer")
		if s.bootstrapApp == "" || s.bootstrapSecret == "" {
			writeStubJSON(w, http.StatusForbidden, map[string]any{"message": "missing application credentials"})
			return
		}
		writeStubJSON(w, s.credentialStatus, s.credential)
	})
	mux.HandleFunc("/api/v6/me", func(w http.ResponseWriter, r *http.Request) {
		s.meCalls++
		if r.Header.Get("X-Portal-Consumer") == "" {
			writeStubJSON(w, http.StatusForbidden, map[string]any{"message": "missing consumer key"})
			return
		}
		writeStubJSON(w, s.meStatus, s.me)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func writeStubJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// newSessionPortal builds a portal pointed at the remote API stub.
func newSessionPortal(t *testing.T, stub *remoteAPIStub) *Portal {
	t.Helper()

	server := stub.serve(t)
	cfg := testConfig()
	cfg.API.Endpoint = server.URL

	portal, err := New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(portal.Close)
	return portal
}
