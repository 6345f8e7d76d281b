package phone

import "testing"

func TestExtract_ColombiaMixedField(t *testing.T) {
	result := Extract([]string{"Tel: 3001234567 / oficina 6013334455 ext 23"}, CountryColombia)

	if result.Primary != "+573001234567" {
		t.Fatalf("expected primary +573001234567, got %q", result.Primary)
	}
	if result.Secondary != "" {
		t.Fatalf("expected empty secondary, got %q", result.Secondary)
	}
	if result.Stats.TokenCount != 2 {
		t.Fatalf("expected 2 tokens, got %d", result.Stats.TokenCount)
	}
	if result.Stats.DiscardedCount != 1 {
		t.Fatalf("expected 1 discarded, got %d", result.Stats.DiscardedCount)
	}
	if result.Stats.ValidCount != 1 {
		t.Fatalf("expected 1 valid, got %d", result.Stats.ValidCount)
	}
}

func TestExtract_UnknownCountry(t *testing.T) {
	result := Extract([]string{"3001234567"}, "AR")

	if result.Primary != "" || result.Secondary != "" || len(result.Candidates) != 0 {
		t.Fatalf("expected empty result for unknown country, got %+v", result)
	}
	if result.Stats != (Stats{}) {
		t.Fatalf("expected zero stats for unknown country, got %+v", result.Stats)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	result := Extract(nil, CountryColombia)

	if result.HasValidPhone() {
		t.Fatal("expected no valid phone for empty input")
	}
	if result.Stats != (Stats{}) {
		t.Fatalf("expected zero stats, got %+v", result.Stats)
	}
}

func TestExtract_NeverMoreThanTwoCandidates(t *testing.T) {
	fields := []string{"3001111111, 3002222222; 3003333333|3004444444"}
	result := Extract(fields, CountryColombia)

	if len(result.Candidates) > 2 {
		t.Fatalf("expected at most 2 candidates, got %d", len(result.Candidates))
	}
	if result.Primary != "+573001111111" {
		t.Fatalf("expected first-occurrence primary, got %q", result.Primary)
	}
	if result.Secondary != "+573002222222" {
		t.Fatalf("expected second candidate, got %q", result.Secondary)
	}
	if result.Stats.ValidCount != 4 {
		t.Fatalf("expected 4 valid tokens, got %d", result.Stats.ValidCount)
	}
}

func TestExtract_DeduplicatesAcrossFormats(t *testing.T) {
	fields := []string{"300 123 4567", "+57 300 123 4567", "573001234567"}
	result := Extract(fields, CountryColombia)

	if result.Stats.DuplicateCount != 2 {
		t.Fatalf("expected 2 duplicates, got %d", result.Stats.DuplicateCount)
	}
	if len(result.Candidates) != 1 {
		t.Fatalf("expected 1 candidate after dedupe, got %d", len(result.Candidates))
	}
	if result.Primary != "+573001234567" {
		t.Fatalf("expected +573001234567, got %q", result.Primary)
	}
}

func TestExtract_MobileRanksFirst(t *testing.T) {
	// Chilean landline (Santiago) first in the field, mobile second.
	fields := []string{"56221234567", "987654321"}
	result := Extract(fields, CountryChile)

	if result.Primary != "+56987654321" {
		t.Fatalf("expected mobile ranked first, got %q", result.Primary)
	}
	if result.Secondary != "+5622123456"+"7" {
		t.Fatalf("expected landline second, got %q", result.Secondary)
	}
	if result.Stats.PreferredMobileCount != 1 {
		t.Fatalf("expected 1 preferred mobile, got %d", result.Stats.PreferredMobileCount)
	}
}

func TestExtract_InternationalPrefixes(t *testing.T) {
	result := Extract([]string{"00573001234567"}, CountryColombia)
	if result.Primary != "+573001234567" {
		t.Fatalf("expected 00-prefix converted, got %q", result.Primary)
	}

	result = Extract([]string{"12125551234"}, CountryMexico)
	if result.Primary != "+12125551234" {
		t.Fatalf("expected NANP number accepted, got %q", result.Primary)
	}
}

func TestExtract_MexicoLegacyMobileForm(t *testing.T) {
	result := Extract([]string{"5215512345678"}, CountryMexico)

	if result.Primary != "+525512345678" {
		t.Fatalf("expected legacy 1 infix dropped, got %q", result.Primary)
	}
	if result.Stats.PreferredMobileCount != 1 {
		t.Fatalf("expected preferred mobile, got %d", result.Stats.PreferredMobileCount)
	}
}

func TestExtract_ExtensionVariants(t *testing.T) {
	cases := []string{
		"3001234567 ext 12",
		"3001234567 ext. 12",
		"3001234567 x 12",
		"3001234567 #12",
	}
	for _, field := range cases {
		result := Extract([]string{field}, CountryColombia)
		if result.Primary != "+573001234567" {
			t.Fatalf("field %q: expected +573001234567, got %q", field, result.Primary)
		}
	}
}

func TestExtract_SeparatorTolerance(t *testing.T) {
	result := Extract([]string{"(300) 123-45.67"}, CountryColombia)

	if result.Primary != "+573001234567" {
		t.Fatalf("expected separators stripped, got %q", result.Primary)
	}
}

func TestExtract_ShortRunsIgnored(t *testing.T) {
	result := Extract([]string{"piso 3, oficina 402"}, CountryColombia)

	if result.Stats.TokenCount != 0 {
		t.Fatalf("expected no tokens from short digit runs, got %d", result.Stats.TokenCount)
	}
	if result.HasValidPhone() {
		t.Fatal("expected no valid phone")
	}
}

func TestNormalizeE164(t *testing.T) {
	number, ok := NormalizeE164("300 123 4567", CountryColombia)
	if !ok {
		t.Fatal("expected valid Colombian mobile")
	}
	if number != "+573001234567" {
		t.Fatalf("expected +573001234567, got %q", number)
	}

	if _, ok := NormalizeE164("12345", CountryColombia); ok {
		t.Fatal("expected short number to be rejected")
	}
	if _, ok := NormalizeE164("", CountryColombia); ok {
		t.Fatal("expected empty input to be rejected")
	}
}
