package models

import (
	"github.com/shopspring/decimal"
)

// ApplicationForm is a validated, normalized application payload. It is only
// produced by the validation package; every field here already satisfies its
// structural rule and the cross-field rules hold.
type ApplicationForm struct {
	PointOfContact      PointOfContact      `json:"point_of_contact"`
	CompanyInfo         CompanyInfo         `json:"company_info"`
	CountriesOfInterest CountriesOfInterest `json:"countries_of_interest"`
	SharesStructure     SharesStructure     `json:"shares_structure"`
	Shareholders        []Shareholder       `json:"shareholders"`
	BeneficialOwners    []BeneficialOwner   `json:"beneficial_owners"`
	Directors           []Director          `json:"directors"`
}

type PointOfContact struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type CompanyInfo struct {
	CompanyName            string      `json:"company_name"`
	AlternativeCompanyName *string     `json:"alternative_company_name,omitempty"`
	Designation            Designation `json:"designation"`
}

type CountriesOfInterest struct {
	JurisdictionOfOperation Jurisdiction `json:"jurisdiction_of_operation"`
	TargetJurisdictions     []string     `json:"target_jurisdictions,omitempty"`
}

type SharesStructure struct {
	NumberOfShares       int64           `json:"number_of_shares"`
	AllSharesIssued      bool            `json:"all_shares_issued"`
	NumberOfIssuedShares *int64          `json:"number_of_issued_shares,omitempty"`
	ValuePerShare        decimal.Decimal `json:"value_per_share"`
}

// Person holds the identity fields shared by shareholders, owners and directors.
type Person struct {
	FullName       string  `json:"full_name"`
	Nationality    string  `json:"nationality"`
	Address        string  `json:"address"`
	DateOfBirth    *string `json:"date_of_birth,omitempty"`
	PassportNumber *string `json:"passport_number,omitempty"`
}

type Shareholder struct {
	Type ShareholderType `json:"type"`
	Person
	SharePercentage    decimal.Decimal `json:"share_percentage"`
	CorporateName      *string         `json:"corporate_name,omitempty"`
	RegistrationNumber *string         `json:"registration_number,omitempty"`
}

type BeneficialOwner struct {
	Person
	OwnershipPercentage decimal.Decimal `json:"ownership_percentage"`
	SourceOfFunds       SourceOfFunds   `json:"source_of_funds"`
	PoliticallyExposed  bool            `json:"politically_exposed"`
}

type Director struct {
	Person
	Occupation   Occupation `json:"occupation"`
	Experience   string     `json:"experience"`
	ConsentToAct bool       `json:"consent_to_act"`
}

// TotalSharePercentage sums the shareholders' percentages exactly.
func (f *ApplicationForm) TotalSharePercentage() decimal.Decimal {
	total := decimal.Zero
	for _, sh := range f.Shareholders {
		total = total.Add(sh.SharePercentage)
	}
	return total
}
