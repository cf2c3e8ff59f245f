// Package fixtures builds application payloads for tests across the
// formation packages.
package fixtures

import (
	"encoding/json"

	"formation/internal/formation/validation"
)

// ApplicationBody is a complete valid submission: two shareholders at 60/40,
// one business-funded beneficial owner, one consenting director, a corp in uk.
func ApplicationBody() map[string]any {
	return map[string]any{
		"point_of_contact": map[string]any{
			"full_name": "Jane Smith",
			"email":     "jane.smith@example.com",
		},
		"company_info": map[string]any{
			"company_name":             "Harbour Ventures",
			"alternative_company_name": "Harbour Ventures Group",
			"designation":              "corp",
		},
		"countries_of_interest": map[string]any{
			"jurisdiction_of_operation": "uk",
			"target_jurisdictions":      []any{"SG", "us", "sg"},
		},
		"shares_structure": map[string]any{
			"number_of_shares":  50000,
			"all_shares_issued": true,
			"value_per_share":   1.00,
		},
		"shareholders": []any{
			map[string]any{
				"type":             "individual",
				"full_name":        "Jane Smith",
				"nationality":      "British",
				"address":          "12 Harbour Street, London",
				"share_percentage": 60,
				"date_of_birth":    "1980-04-12",
				"passport_number":  "P1234567",
			},
			map[string]any{
				"type":                "corporate",
				"full_name":           "Marcus Lee",
				"nationality":         "Singaporean",
				"address":             "8 Marina Boulevard, Singapore",
				"share_percentage":    "40",
				"corporate_name":      "Lee Holdings Pte",
				"registration_number": "201912345K",
			},
		},
		"beneficial_owners": []any{
			map[string]any{
				"full_name":            "Jane Smith",
				"nationality":          "British",
				"address":              "12 Harbour Street, London",
				"date_of_birth":        "1980-04-12",
				"passport_number":      "P1234567",
				"ownership_percentage": 60,
				"source_of_funds":      "business",
				"politically_exposed":  false,
			},
		},
		"directors": []any{
			map[string]any{
				"full_name":       "Jane Smith",
				"nationality":     "British",
				"address":         "12 Harbour Street, London",
				"date_of_birth":   "1980-04-12",
				"passport_number": "P1234567",
				"occupation":      "executive",
				"experience":      "Fifteen years running logistics companies",
				"consent_to_act":  true,
			},
		},
	}
}

// Payload decodes body the way the HTTP handler would.
func Payload(body map[string]any) *validation.Payload {
	raw, err := json.Marshal(body)
	if err != nil {
		panic(err)
	}
	var p validation.Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		panic(err)
	}
	return &p
}

// ValidPayload is Payload(ApplicationBody()).
func ValidPayload() *validation.Payload {
	return Payload(ApplicationBody())
}

// Section returns body[name] as a map for in-place edits.
func Section(body map[string]any, name string) map[string]any {
	return body[name].(map[string]any)
}

// Entry returns body[list][i] as a map for in-place edits.
func Entry(body map[string]any, list string, i int) map[string]any {
	return body[list].([]any)[i].(map[string]any)
}
