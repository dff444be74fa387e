package portalcore

import (
	"context"
	"errors"
	"testing"
)

func TestTOTPSecretMintedOncePerModal(t *testing.T) {
	portal, _, mutate := newTestPortal(t)
	ctrl := portal.Security()

	var mints int
	mutate.createTOTP = func(context.Context) (*TOTPSecret, error) {
		mints++
		return &TOTPSecret{ID: 301, Secret: "JBSWY3DPEHPK3PXP", URI: "otpauth://totp/demo"}, nil
	}

	token, err := ctrl.OpenModal(context.Background(), ModalTOTP)
	if err != nil {
		t.Fatalf("OpenModal failed: %v", err)
	}

	secret, err := ctrl.RequestTOTPSecret(context.Background(), token)
	if err != nil {
		t.Fatalf("RequestTOTPSecret failed: %v", err)
	}
	if secret == nil || secret.Secret != "JBSWY3DPEHPK3PXP" {
		t.Fatalf("unexpected secret %+v", secret)
	}

	if _, err := ctrl.RequestTOTPSecret(context.Background(), token); !errors.Is(err, ErrSecretPending) {
		t.Fatalf("expected ErrSecretPending on the second request, got %v", err)
	}
	if mints != 1 {
		t.Fatalf("expected exactly one mint per modal open, got %d", mints)
	}

	// A fresh modal open may mint again.
	token, err = ctrl.OpenModal(context.Background(), ModalTOTP)
	if err != nil {
		t.Fatalf("OpenModal failed: %v", err)
	}
	if _, err := ctrl.RequestTOTPSecret(context.Background(), token); err != nil {
		t.Fatalf("RequestTOTPSecret after reopen failed: %v", err)
	}
	if mints != 2 {
		t.Fatalf("expected a second mint after reopen, got %d", mints)
	}
}

func TestTOTPValidationClosesAndRefetches(t *testing.T) {
	portal, query, mutate := newTestPortal(t)
	ctrl := portal.Security()

	var validated struct {
		id   int64
		code string
	}
	mutate.validateTOTP = func(_ context.Context, id int64, code string) error {
		validated.id = id
		validated.code = code
		return nil
	}

	token, err := ctrl.OpenModal(context.Background(), ModalTOTP)
	if err != nil {
		t.Fatalf("OpenModal failed: %v", err)
	}
	if _, err := ctrl.RequestTOTPSecret(context.Background(), token); err != nil {
		t.Fatalf("RequestTOTPSecret failed: %v", err)
	}
	if err := ctrl.SubmitTOTPCode(context.Background(), token, "654321"); err != nil {
		t.Fatalf("SubmitTOTPCode failed: %v", err)
	}

	if validated.id != 301 || validated.code != "654321" {
		t.Fatalf("unexpected validation call: %+v", validated)
	}
	if view := ctrl.View(); view.Modal.Kind != ModalNone {
		t.Fatalf("expected the modal closed, got %s", view.Modal.Kind)
	}
	if query.calls() != 1 {
		t.Fatalf("expected one refetch after validation, got %d", query.calls())
	}
}

func TestTOTPCodeWithoutSecret(t *testing.T) {
	portal, _, _ := newTestPortal(t)
	ctrl := portal.Security()

	token, err := ctrl.OpenModal(context.Background(), ModalTOTP)
	if err != nil {
		t.Fatalf("OpenModal failed: %v", err)
	}
	if err := ctrl.SubmitTOTPCode(context.Background(), token, "654321"); !errors.Is(err, ErrModalMismatch) {
		t.Fatalf("expected ErrModalMismatch without a minted secret, got %v", err)
	}
}

func TestTOTPRejectionKeepsSecretVisible(t *testing.T) {
	portal, _, mutate := newTestPortal(t)
	ctrl := portal.Security()

	mutate.validateTOTP = func(context.Context, int64, string) error {
		return errors.New("code out of window")
	}

	token, err := ctrl.OpenModal(context.Background(), ModalTOTP)
	if err != nil {
		t.Fatalf("OpenModal failed: %v", err)
	}
	if _, err := ctrl.RequestTOTPSecret(context.Background(), token); err != nil {
		t.Fatalf("RequestTOTPSecret failed: %v", err)
	}

	err = ctrl.SubmitTOTPCode(context.Background(), token, "000000")
	if !errors.Is(err, ErrMutationFailed) {
		t.Fatalf("expected ErrMutationFailed, got %v", err)
	}

	view := ctrl.View()
	if view.Modal.Kind != ModalTOTP || view.Modal.TOTPSecret == nil {
		t.Fatalf("expected the secret still visible for retry, got %+v", view.Modal)
	}
}

func TestTOTPSecretQRCode(t *testing.T) {
	secret := &TOTPSecret{
		ID:     301,
		Secret: "JBSWY3DPEHPK3PXP",
		URI:    "otpauth://totp/portal:xx1234-ovh?secret=JBSWY3DPEHPK3PXP&issuer=portal",
	}

	png, err := secret.QRCodePNG()
	if err != nil {
		t.Fatalf("QRCodePNG failed: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("expected PNG bytes")
	}
	// PNG signature.
	if string(png[1:4]) != "PNG" {
		t.Fatalf("expected a PNG stream, got leading bytes %v", png[:8])
	}

	var empty *TOTPSecret
	if _, err := empty.QRCodePNG(); err == nil {
		t.Fatal("expected an error for a nil secret")
	}
}
