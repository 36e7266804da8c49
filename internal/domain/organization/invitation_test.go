package organization

import (
	"testing"
	"time"
)

func TestCompanyInvitationExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inv := &CompanyInvitation{ExpiresAt: now}
	if !inv.Expired(now) {
		t.Fatalf("expired at boundary: want=true got=false")
	}
	if inv.Expired(now.Add(-time.Second)) {
		t.Fatalf("expired before boundary: want=false got=true")
	}
	if inv.Accepted() {
		t.Fatalf("accepted: want=false got=true")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Awa.Diop@Example.COM "); got != "awa.diop@example.com" {
		t.Fatalf("NormalizeEmail: want=awa.diop@example.com got=%q", got)
	}
}
