package portalcore

import (
	"context"
	"errors"
	"testing"
)

func TestU2FRegistrationKeepsModalOpen(t *testing.T) {
	portal, query, _ := newTestPortal(t)
	ctrl := portal.Security()

	token, err := ctrl.OpenModal(context.Background(), ModalU2F)
	if err != nil {
		t.Fatalf("OpenModal failed: %v", err)
	}

	reg, err := ctrl.RegisterU2F(context.Background(), token)
	if err != nil {
		t.Fatalf("RegisterU2F failed: %v", err)
	}
	if reg == nil || reg.Challenge == "" {
		t.Fatalf("expected a registration challenge, got %+v", reg)
	}

	view := ctrl.View()
	if view.Modal.Kind != ModalU2F {
		t.Fatalf("expected the modal open for the device ceremony, got %s", view.Modal.Kind)
	}
	if view.Modal.U2FRegistration == nil {
		t.Fatal("expected the registration held on the modal")
	}
	if view.Modal.Success == "" {
		t.Fatal("expected a success message")
	}
	if query.calls() != 0 {
		t.Fatalf("registration must not refetch before the ceremony completes, got %d fetches", query.calls())
	}
}

func TestU2FRegistrationFailure(t *testing.T) {
	portal, _, mutate := newTestPortal(t)
	ctrl := portal.Security()

	mutate.registerU2F = func(context.Context) (*U2FRegistration, error) {
		return nil, errors.New("u2f not available for this account")
	}

	token, err := ctrl.OpenModal(context.Background(), ModalU2F)
	if err != nil {
		t.Fatalf("OpenModal failed: %v", err)
	}

	_, err = ctrl.RegisterU2F(context.Background(), token)
	if !errors.Is(err, ErrMutationFailed) {
		t.Fatalf("expected ErrMutationFailed, got %v", err)
	}
	if view := ctrl.View(); view.Modal.Err == nil {
		t.Fatal("expected the failure recorded on the modal")
	}
}
