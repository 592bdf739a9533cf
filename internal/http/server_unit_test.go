package http

import "testing"

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":                  "",
		"Bearer abc.def.gh": "abc.def.gh",
		"bearer abc.def.gh": "abc.def.gh",
		"Basic abc":         "",
		"Bearer":            "",
	}
	for input, expect := range cases {
		if got := bearerToken(input); got != expect {
			t.Fatalf("bearerToken(%q) = %q, want %q", input, got, expect)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := normalizeEmail("  Coach@Example.COM "); got != "coach@example.com" {
		t.Fatalf("unexpected normalized email %q", got)
	}
}

func TestMatchRequestValidation(t *testing.T) {
	valid := matchRequest{Name: "Week 1", Opponent: "Eagles", GameDate: "2025-09-05"}
	match, err := valid.toModel()
	if err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
	if match.GameDate.Format("2006-01-02") != "2025-09-05" {
		t.Fatalf("unexpected game date %s", match.GameDate)
	}

	invalid := []matchRequest{
		{Name: "", Opponent: "Eagles", GameDate: "2025-09-05"},
		{Name: "Week 1", Opponent: " ", GameDate: "2025-09-05"},
		{Name: "Week 1", Opponent: "Eagles", GameDate: "09/05/2025"},
		{Name: "Week 1", Opponent: "Eagles", GameDate: ""},
	}
	for _, req := range invalid {
		if _, err := req.toModel(); err == nil {
			t.Fatalf("expected %+v to be rejected", req)
		}
	}
}

func TestStatsPayloadEmptyStaysAbsent(t *testing.T) {
	var empty statsPayload
	if st := empty.toModel(1, 2); st != nil {
		t.Fatalf("expected all-nil payload to map to nil, got %+v", st)
	}

	yards := 120
	withValue := statsPayload{RushingYards: &yards}
	st := withValue.toModel(1, 2)
	if st == nil {
		t.Fatalf("expected payload with a value to map to a row")
	}
	if st.PlayerID != 1 || st.GameID != 2 || st.RushingYards == nil || *st.RushingYards != 120 {
		t.Fatalf("unexpected stats row %+v", st)
	}
}
