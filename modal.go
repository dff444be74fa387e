package portalcore

// ModalKind defines a public type used by portalcore APIs.
//
// ModalKind instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ModalKind int

const (
	// ModalNone means no modal is open.
	ModalNone ModalKind = iota
	// ModalPassword confirms a password change request.
	ModalPassword
	// ModalSMS enrolls a new SMS second factor.
	ModalSMS
	// ModalDeleteSMS confirms removal of an SMS second factor.
	ModalDeleteSMS
	// ModalTOTP enrolls a new TOTP second factor.
	ModalTOTP
	// ModalDeleteTOTP confirms removal of a TOTP second factor.
	ModalDeleteTOTP
	// ModalU2F registers a new U2F device.
	ModalU2F
	// ModalDeleteU2F confirms removal of a U2F device.
	ModalDeleteU2F
	// ModalBackup generates and confirms backup codes.
	ModalBackup
	// ModalDisable2FA disables all second factors with a backup code.
	ModalDisable2FA
	// ModalIP adds an IP restriction rule.
	ModalIP
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k ModalKind) String() string {
	switch k {
	case ModalNone:
		return "none"
	case ModalPassword:
		return "password"
	case ModalSMS:
		return "sms"
	case ModalDeleteSMS:
		return "deleteSms"
	case ModalTOTP:
		return "totp"
	case ModalDeleteTOTP:
		return "deleteTotp"
	case ModalU2F:
		return "u2f"
	case ModalDeleteU2F:
		return "deleteU2f"
	case ModalBackup:
		return "backup"
	case ModalDisable2FA:
		return "disable2fa"
	case ModalIP:
		return "ip"
	default:
		return "unknown"
	}
}

func (k ModalKind) isDelete() bool {
	switch k {
	case ModalDeleteSMS, ModalDeleteTOTP, ModalDeleteU2F:
		return true
	default:
		return false
	}
}

// SMSStep defines a public type used by portalcore APIs.
//
// SMSStep instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SMSStep int

const (
	// SMSStepPhone collects the phone number.
	SMSStepPhone SMSStep = iota
	// SMSStepCode collects the validation code sent to the phone.
	SMSStepCode
)

// BackupStep defines a public type used by portalcore APIs.
//
// BackupStep instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type BackupStep int

const (
	// BackupStepGenerate offers to mint a fresh code set.
	BackupStepGenerate BackupStep = iota
	// BackupStepConfirm requires one code typed back before activation.
	BackupStepConfirm
)

// ModalView defines a public type used by portalcore APIs.
//
// ModalView instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ModalView struct {
	Kind    ModalKind
	Loading bool
	// Err is the last mutation failure scoped to this modal, cleared when a
	// new attempt starts.
	Err     error
	Success string

	SMSStep  SMSStep
	SMSPhone string

	TOTPSecret *TOTPSecret

	U2FRegistration *U2FRegistration

	BackupStep  BackupStep
	BackupCodes []string

	// TargetID is the mechanism selected for removal in delete modals.
	TargetID int64
}

// SecurityView defines a public type used by portalcore APIs.
//
// SecurityView instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityView struct {
	Loading bool
	LoadErr error
	Status  *SecurityStatus
	Modal   ModalView
	// IPErr is the last inline IP-list action failure. It lives outside the
	// modal slot because deleting a rule does not open a modal.
	IPErr error
}

// modalState is the single mutable modal slot. One modal at a time; opening
// a new one implicitly cancels whatever the previous one had in flight.
type modalState struct {
	kind    ModalKind
	token   string
	loading bool
	err     error
	success string

	smsStep      SMSStep
	smsPhone     string
	pendingSMSID int64

	totpSecret *TOTPSecret

	u2f *U2FRegistration

	backupStep  BackupStep
	backupCodes []string

	targetID int64
}

func (m *modalState) view() ModalView {
	v := ModalView{
		Kind:     m.kind,
		Loading:  m.loading,
		Err:      m.err,
		Success:  m.success,
		SMSStep:  m.smsStep,
		SMSPhone: m.smsPhone,
		TargetID: m.targetID,
	}
	if m.totpSecret != nil {
		secret := *m.totpSecret
		v.TOTPSecret = &secret
	}
	if m.u2f != nil {
		reg := *m.u2f
		v.U2FRegistration = &reg
	}
	if len(m.backupCodes) > 0 {
		v.BackupCodes = append([]string(nil), m.backupCodes...)
		v.BackupStep = m.backupStep
	} else {
		v.BackupStep = m.backupStep
	}
	return v
}
