package pagination

import (
	"net/http/httptest"
	"testing"
)

func TestFromRequest_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/appointments", nil)
	p := FromRequest(r)
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Fatalf("expected defaults, got %+v", p)
	}
}

func TestFromRequest_ClampsLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/appointments?limit=9999&offset=-3", nil)
	p := FromRequest(r)
	if p.Limit != MaxLimit {
		t.Fatalf("expected limit clamped to %d, got %d", MaxLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Fatalf("expected negative offset clamped to 0, got %d", p.Offset)
	}
}

func TestSQLClause(t *testing.T) {
	p := Params{Limit: 10, Offset: 30}
	if got := p.SQL(); got != "LIMIT 10 OFFSET 30" {
		t.Fatalf("unexpected clause: %q", got)
	}
	if !p.HasMore(41) {
		t.Fatalf("expected more pages at total=41")
	}
	if p.HasMore(40) {
		t.Fatalf("expected no more pages at total=40")
	}
}
