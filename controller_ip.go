package portalcore

import (
	"context"
	"fmt"
	"net"
	"strings"
)

// validIPRestriction accepts a single address or a CIDR block.
func validIPRestriction(ip string) bool {
	if strings.Contains(ip, "/") {
		_, _, err := net.ParseCIDR(ip)
		return err == nil
	}
	return net.ParseIP(ip) != nil
}

// SubmitIPRestriction describes the submitiprestriction operation and its observable behavior.
//
// SubmitIPRestriction may return an error when input validation, dependency calls, or security checks fail.
// SubmitIPRestriction does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SecurityController) SubmitIPRestriction(ctx context.Context, token, ip string, rule IPRule, warning bool) error {
	if c == nil {
		return ErrPortalNotReady
	}

	if rule == "" {
		rule = IPRuleAccept
	}
	if !rule.Valid() {
		return &MutationError{Op: "addIpRestriction", Message: fmt.Sprintf("unknown rule %q", rule)}
	}
	if !validIPRestriction(ip) {
		return &MutationError{Op: "addIpRestriction", Message: fmt.Sprintf("invalid address %q", ip)}
	}

	if err := c.begin(ModalIP, token); err != nil {
		return err
	}

	if err := c.mutate.AddIPRestriction(ctx, ip, rule, warning); err != nil {
		return c.fail(ctx, token, "addIpRestriction", err)
	}

	c.portal.metricInc(MetricIPRuleAdded)
	c.portal.emitAudit(ctx, auditEventIPRuleAdded, true, ModalIP.String(), nil, func() map[string]string {
		return map[string]string{"rule": string(rule)}
	})
	return c.finish(ctx, token)
}

// DeleteIPRestriction describes the deleteiprestriction operation and its observable behavior.
//
// DeleteIPRestriction may return an error when input validation, dependency calls, or security checks fail.
// DeleteIPRestriction does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SecurityController) DeleteIPRestriction(ctx context.Context, id int64) error {
	if c == nil {
		return ErrPortalNotReady
	}

	// Rule deletion is an inline list action. It never touches the modal
	// slot, so its error surface is a separate field.
	if err := c.mutate.DeleteIPRestriction(ctx, id); err != nil {
		mutErr := newMutationError("deleteIpRestriction", err)
		c.mu.Lock()
		c.ipErr = mutErr
		c.mu.Unlock()

		c.portal.metricInc(MetricMutationFailure)
		c.portal.emitAudit(ctx, auditEventMutationFailure, false, "", mutErr, func() map[string]string {
			return map[string]string{"op": "deleteIpRestriction"}
		})
		return mutErr
	}

	c.mu.Lock()
	c.ipErr = nil
	c.mu.Unlock()

	c.portal.metricInc(MetricIPRuleDeleted)
	c.portal.emitAudit(ctx, auditEventIPRuleDeleted, true, "", nil, nil)
	return c.Reload(ctx)
}
