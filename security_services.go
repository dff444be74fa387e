package portalcore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/veltacloud/portalcore/internal/api"
)

// SecurityQueryService defines a public type used by portalcore APIs.
//
// SecurityQueryService instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityQueryService interface {
	TwoFactorStatus(ctx context.Context) (*TwoFactorStatus, error)
	IPRestrictions(ctx context.Context) ([]IPRestriction, error)
	IPDefaultRule(ctx context.Context) (*IPDefaultRule, error)
}

// SecurityMutationService defines a public type used by portalcore APIs.
//
// SecurityMutationService instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityMutationService interface {
	AddSMS(ctx context.Context, phone string) (int64, error)
	SendSMSCode(ctx context.Context, id int64) error
	ValidateSMS(ctx context.Context, id int64, code string) error
	DeleteSMS(ctx context.Context, id int64) error

	CreateTOTP(ctx context.Context) (*TOTPSecret, error)
	ValidateTOTP(ctx context.Context, id int64, code string) error
	DeleteTOTP(ctx context.Context, id int64) error

	RegisterU2F(ctx context.Context) (*U2FRegistration, error)
	DeleteU2F(ctx context.Context, id int64) error

	GenerateBackupCodes(ctx context.Context) ([]string, error)
	ValidateBackupCode(ctx context.Context, code string) error
	Disable2FA(ctx context.Context, code string) error

	AddIPRestriction(ctx context.Context, ip string, rule IPRule, warning bool) error
	DeleteIPRestriction(ctx context.Context, id int64) error

	RequestPasswordChange(ctx context.Context) error
}

// newMutationError wraps a raw service failure into the mutation taxonomy,
// surfacing the remote message when the API provided one.
func newMutationError(op string, err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return &MutationError{Op: op, Message: apiErr.Message}
	}
	return &MutationError{Op: op, Message: err.Error()}
}

// apiSecurityService implements both security service interfaces against the
// remote account API using the portal's delegated credential.
type apiSecurityService struct {
	portal *Portal
}

func (s *apiSecurityService) client() (*api.Client, error) {
	return s.portal.authorizedClient()
}

type idList []int64

type smsDetail struct {
	ID          int64     `json:"id"`
	PhoneNumber string    `json:"phoneNumber"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	LastUsed    time.Time `json:"lastUsed,omitempty"`
}

type totpDetail struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	LastUsed    time.Time `json:"lastUsed,omitempty"`
}

type u2fDetail struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	LastUsed    time.Time `json:"lastUsed,omitempty"`
}

type backupCodeDetail struct {
	Remaining int    `json:"remaining"`
	Status    string `json:"status"`
}

// TwoFactorStatus describes the twofactorstatus operation and its observable behavior.
//
// TwoFactorStatus may return an error when input validation, dependency calls, or security checks fail.
// TwoFactorStatus does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *apiSecurityService) TwoFactorStatus(ctx context.Context) (*TwoFactorStatus, error) {
	client, err := s.client()
	if err != nil {
		return nil, err
	}

	status := &TwoFactorStatus{}

	var smsIDs idList
	if err := client.Get(ctx, "/me/accessRestriction/sms", &smsIDs); err != nil {
		return nil, err
	}
	for _, id := range smsIDs {
		var detail smsDetail
		if err := client.Get(ctx, fmt.Sprintf("/me/accessRestriction/sms/%d", id), &detail); err != nil {
			return nil, err
		}
		status.SMS = append(status.SMS, SMSEntry{
			ID:          detail.ID,
			PhoneNumber: detail.PhoneNumber,
			Description: detail.Description,
			Status:      MechanismStatus(detail.Status),
			LastUsed:    detail.LastUsed,
		})
	}

	var totpIDs idList
	if err := client.Get(ctx, "/me/accessRestriction/totp", &totpIDs); err != nil {
		return nil, err
	}
	for _, id := range totpIDs {
		var detail totpDetail
		if err := client.Get(ctx, fmt.Sprintf("/me/accessRestriction/totp/%d", id), &detail); err != nil {
			return nil, err
		}
		status.TOTP = append(status.TOTP, TOTPEntry{
			ID:          detail.ID,
			Description: detail.Description,
			Status:      MechanismStatus(detail.Status),
			LastUsed:    detail.LastUsed,
		})
	}

	var u2fIDs idList
	if err := client.Get(ctx, "/me/accessRestriction/u2f", &u2fIDs); err != nil {
		return nil, err
	}
	for _, id := range u2fIDs {
		var detail u2fDetail
		if err := client.Get(ctx, fmt.Sprintf("/me/accessRestriction/u2f/%d", id), &detail); err != nil {
			return nil, err
		}
		status.U2F = append(status.U2F, U2FEntry{
			ID:          detail.ID,
			Description: detail.Description,
			Status:      MechanismStatus(detail.Status),
			LastUsed:    detail.LastUsed,
		})
	}

	var backup backupCodeDetail
	if err := client.Get(ctx, "/me/accessRestriction/backupCode", &backup); err != nil {
		// Accounts with no second factor have no backup code resource yet.
		var apiErr *api.Error
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
			return nil, err
		}
		backup = backupCodeDetail{Status: string(MechanismDisabled)}
	}
	status.BackupCode = &BackupCodeStatus{
		Remaining: backup.Remaining,
		Status:    MechanismStatus(backup.Status),
	}

	return status, nil
}

type ipDetail struct {
	ID      int64  `json:"id"`
	IP      string `json:"ip"`
	Rule    string `json:"rule"`
	Warning bool   `json:"warning"`
}

type ipDefaultRuleDetail struct {
	Rule    string `json:"rule"`
	Warning bool   `json:"warning"`
}

// IPRestrictions describes the iprestrictions operation and its observable behavior.
//
// IPRestrictions may return an error when input validation, dependency calls, or security checks fail.
// IPRestrictions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *apiSecurityService) IPRestrictions(ctx context.Context) ([]IPRestriction, error) {
	client, err := s.client()
	if err != nil {
		return nil, err
	}

	var ids idList
	if err := client.Get(ctx, "/me/accessRestriction/ip", &ids); err != nil {
		return nil, err
	}

	restrictions := make([]IPRestriction, 0, len(ids))
	for _, id := range ids {
		var detail ipDetail
		if err := client.Get(ctx, fmt.Sprintf("/me/accessRestriction/ip/%d", id), &detail); err != nil {
			return nil, err
		}
		restrictions = append(restrictions, IPRestriction{
			ID:      detail.ID,
			IP:      detail.IP,
			Rule:    IPRule(detail.Rule),
			Warning: detail.Warning,
		})
	}
	return restrictions, nil
}

// IPDefaultRule describes the ipdefaultrule operation and its observable behavior.
//
// IPDefaultRule may return an error when input validation, dependency calls, or security checks fail.
// IPDefaultRule does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *apiSecurityService) IPDefaultRule(ctx context.Context) (*IPDefaultRule, error) {
	client, err := s.client()
	if err != nil {
		return nil, err
	}

	var detail ipDefaultRuleDetail
	if err := client.Get(ctx, "/me/accessRestriction/ipDefaultRule", &detail); err != nil {
		return nil, err
	}
	return &IPDefaultRule{Rule: IPRule(detail.Rule), Warning: detail.Warning}, nil
}

// AddSMS describes the addsms operation and its observable behavior.
//
// AddSMS may return an error when input validation, dependency calls, or security checks fail.
// AddSMS does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *apiSecurityService) AddSMS(ctx context.Context, phone string) (int64, error) {
	client, err := s.client()
	if err != nil {
		return 0, err
	}

	body := struct {
		Phone string `json:"phone"`
	}{Phone: phone}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := client.Post(ctx, "/me/accessRestriction/sms", body, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// SendSMSCode describes the sendsmscode operation and its observable behavior.
//
// SendSMSCode may return an error when input validation, dependency calls, or security checks fail.
// SendSMSCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *apiSecurityService) SendSMSCode(ctx context.Context, id int64) error {
	client, err := s.client()
	if err != nil {
		return err
	}
	return client.Post(ctx, fmt.Sprintf("/me/accessRestriction/sms/%d/sendCode", id), nil, nil)
}

// ValidateSMS describes the validatesms operation and its observable behavior.
//
// ValidateSMS may return an error when input validation, dependency calls, or security checks fail.
// ValidateSMS does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *apiSecurityService) ValidateSMS(ctx context.Context, id int64, code string) error {
	client, err := s.client()
	if err != nil {
		return err
	}

	body := struct {
		Code string `json:"code"`
	}{Code: code}
	return client.Post(ctx, fmt.Sprintf("/me/accessRestriction/sms/%d/validate", id), body, nil)
}

// DeleteSMS describes the deletesms operation and its observable behavior.
//
// DeleteSMS may return an error when input validation, dependency calls, or security checks fail.
// DeleteSMS does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *apiSecurityService) DeleteSMS(ctx context.Context, id int64) error {
	client, err := s.client()
	if err != nil {
		return err
	}
	return client.Delete(ctx, fmt.Sprintf("/me/accessRestriction/sms/%d", id), nil)
}

// CreateTOTP describes the createtotp operation and its observable behavior.
//
// CreateTOTP may return an error when input validation, dependency calls, or security checks fail.
// CreateTOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *apiSecurityService) CreateTOTP(ctx context.Context) (*TOTPSecret, error) {
	client, err := s.client()
	if err != nil {
		return nil, err
	}

	var created struct {
		ID     int64  `json:"id"`
		Secret string `json:"secret"`
		URI    string `json:"uri"`
	}
	if err := client.Post(ctx, "/me/accessRestriction/totp", nil, &created); err != nil {
		return nil, err
	}
	return &TOTPSecret{ID: created.ID, Secret: created.Secret, URI: created.URI}, nil
}

// ValidateTOTP describes the validatetotp operation and its observable behavior.
//
// ValidateTOTP may return an error when input validation, dependency calls, or security checks fail.
// ValidateTOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *apiSecurityService) ValidateTOTP(ctx context.Context, id int64, code string) error {
	client, err := s.client()
	if err != nil {
		return err
	}

	body := struct {
		Code string `json:"code"`
	}{Code: code}
	return client.Post(ctx, fmt.Sprintf("/me/accessRestriction/totp/%d/validate", id), body, nil)
}

// DeleteTOTP describes the deletetotp operation and its observable behavior.
//
// DeleteTOTP may return an error when input validation, dependency calls, or security checks fail.
// DeleteTOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *apiSecurityService) DeleteTOTP(ctx context.Context, id int64) error {
	client, err := s.client()
	if err != nil {
		return err
	}
	return client.Delete(ctx, fmt.Sprintf("/me/accessRestriction/totp/%d", id), nil)
}

// RegisterU2F describes the registeru2f operation and its observable behavior.
//
// RegisterU2F may return an error when input validation, dependency calls, or security checks fail.
// RegisterU2F does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *apiSecurityService) RegisterU2F(ctx context.Context) (*U2FRegistration, error) {
	client, err := s.client()
	if err != nil {
		return nil, err
	}

	var created struct {
		ID        int64  `json:"id"`
		AppID     string `json:"applicationId"`
		Challenge string `json:"challenge"`
		Version   string `json:"version"`
	}
	if err := client.Post(ctx, "/me/accessRestriction/u2f", nil, &created); err != nil {
		return nil, err
	}
	return &U2FRegistration{
		ID:        created.ID,
		AppID:     created.AppID,
		Challenge: created.Challenge,
		Version:   created.Version,
	}, nil
}

// DeleteU2F describes the deleteu2f operation and its observable behavior.
//
// DeleteU2F may return an error when input validation, dependency calls, or security checks fail.
// DeleteU2F does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *apiSecurityService) DeleteU2F(ctx context.Context, id int64) error {
	client, err := s.client()
	if err != nil {
		return err
	}
	return client.Delete(ctx, fmt.Sprintf("/me/accessRestriction/u2f/%d", id), nil)
}

// GenerateBackupCodes describes the generatebackupcodes operation and its observable behavior.
//
// GenerateBackupCodes may return an error when input validation, dependency calls, or security checks fail.
// GenerateBackupCodes does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *apiSecurityService) GenerateBackupCodes(ctx context.Context) ([]string, error) {
	client, err := s.client()
	if err != nil {
		return nil, err
	}

	var created struct {
		Codes []string `json:"codes"`
	}
	if err := client.Post(ctx, "/me/accessRestriction/backupCode", nil, &created); err != nil {
		return nil, err
	}
	return created.Codes, nil
}

// ValidateBackupCode describes the validatebackupcode operation and its observable behavior.
//
// ValidateBackupCode may return an error when input validation, dependency calls, or security checks fail.
// ValidateBackupCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *apiSecurityService) ValidateBackupCode(ctx context.Context, code string) error {
	client, err := s.client()
	if err != nil {
		return err
	}

	body := struct {
		Code string `json:"code"`
	}{Code: code}
	return client.Post(ctx, "/me/accessRestriction/backupCode/validate", body, nil)
}

// Disable2FA describes the disable2fa operation and its observable behavior.
//
// Disable2FA may return an error when input validation, dependency calls, or security checks fail.
// Disable2FA does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *apiSecurityService) Disable2FA(ctx context.Context, code string) error {
	client, err := s.client()
	if err != nil {
		return err
	}

	body := struct {
		Code string `json:"code"`
	}{Code: code}
	return client.Post(ctx, "/me/accessRestriction/backupCode/disable", body, nil)
}

// AddIPRestriction describes the addiprestriction operation and its observable behavior.
//
// AddIPRestriction may return an error when input validation, dependency calls, or security checks fail.
// AddIPRestriction does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *apiSecurityService) AddIPRestriction(ctx context.Context, ip string, rule IPRule, warning bool) error {
	client, err := s.client()
	if err != nil {
		return err
	}

	body := struct {
		IP      string `json:"ip"`
		Rule    string `json:"rule"`
		Warning bool   `json:"warning"`
	}{IP: ip, Rule: string(rule), Warning: warning}
	return client.Post(ctx, "/me/accessRestriction/ip", body, nil)
}

// DeleteIPRestriction describes the deleteiprestriction operation and its observable behavior.
//
// DeleteIPRestriction may return an error when input validation, dependency calls, or security checks fail.
// DeleteIPRestriction does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *apiSecurityService) DeleteIPRestriction(ctx context.Context, id int64) error {
	client, err := s.client()
	if err != nil {
		return err
	}
	return client.Delete(ctx, fmt.Sprintf("/me/accessRestriction/ip/%d", id), nil)
}

// RequestPasswordChange describes the requestpasswordchange operation and its observable behavior.
//
// RequestPasswordChange may return an error when input validation, dependency calls, or security checks fail.
// RequestPasswordChange does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *apiSecurityService) RequestPasswordChange(ctx context.Context) error {
	client, err := s.client()
	if err != nil {
		return err
	}
	return client.Post(ctx, "/me/changePassword", nil, nil)
}
