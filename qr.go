package portalcore

import (
	"errors"
	"net/url"

	"rsc.io/qr"
)

// QRCodePNG describes the qrcodepng operation and its observable behavior.
//
// QRCodePNG may return an error when input validation, dependency calls, or security checks fail.
// QRCodePNG does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *TOTPSecret) QRCodePNG() ([]byte, error) {
	if s == nil || s.URI == "" {
		return nil, errors.New("no provisioning URI")
	}
	if _, err := url.Parse(s.URI); err != nil {
		return nil, err
	}

	code, err := qr.Encode(s.URI, qr.Q)
	if err != nil {
		return nil, err
	}
	return code.PNG(), nil
}
