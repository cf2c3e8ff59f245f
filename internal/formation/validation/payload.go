package validation

// Payload is an application as the client sent it. Every field decodes
// without error whatever its JSON type, so absence and type mismatches are
// both reported per field by Validate rather than as a decode failure.
type Payload struct {
	PointOfContact      Object[PointOfContactInput]        `json:"point_of_contact"`
	CompanyInfo         Object[CompanyInfoInput]           `json:"company_info"`
	CountriesOfInterest Object[CountriesOfInterestInput]   `json:"countries_of_interest"`
	SharesStructure     Object[SharesStructureInput]       `json:"shares_structure"`
	Shareholders        List[Object[ShareholderInput]]     `json:"shareholders"`
	BeneficialOwners    List[Object[BeneficialOwnerInput]] `json:"beneficial_owners"`
	Directors           List[Object[DirectorInput]]        `json:"directors"`
}

type PointOfContactInput struct {
	FullName Text `json:"full_name"`
	Email    Text `json:"email"`
}

type CompanyInfoInput struct {
	CompanyName            Text `json:"company_name"`
	AlternativeCompanyName Text `json:"alternative_company_name"`
	Designation            Text `json:"designation"`
}

type CountriesOfInterestInput struct {
	JurisdictionOfOperation Text       `json:"jurisdiction_of_operation"`
	TargetJurisdictions     List[Text] `json:"target_jurisdictions"`
}

type SharesStructureInput struct {
	NumberOfShares       Numeric `json:"number_of_shares"`
	AllSharesIssued      Bool    `json:"all_shares_issued"`
	NumberOfIssuedShares Numeric `json:"number_of_issued_shares"`
	ValuePerShare        Numeric `json:"value_per_share"`
}

// PersonInput carries the identity fields every party entry has.
type PersonInput struct {
	FullName       Text `json:"full_name"`
	Nationality    Text `json:"nationality"`
	Address        Text `json:"address"`
	DateOfBirth    Text `json:"date_of_birth"`
	PassportNumber Text `json:"passport_number"`
}

type ShareholderInput struct {
	Type Text `json:"type"`
	PersonInput
	SharePercentage    Numeric `json:"share_percentage"`
	CorporateName      Text    `json:"corporate_name"`
	RegistrationNumber Text    `json:"registration_number"`
}

type BeneficialOwnerInput struct {
	PersonInput
	OwnershipPercentage Numeric `json:"ownership_percentage"`
	SourceOfFunds       Text    `json:"source_of_funds"`
	PoliticallyExposed  Bool    `json:"politically_exposed"`
}

type DirectorInput struct {
	PersonInput
	Occupation   Text `json:"occupation"`
	Experience   Text `json:"experience"`
	ConsentToAct Bool `json:"consent_to_act"`
}
