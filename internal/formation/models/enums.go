package models

// Closed value sets accepted by the intake form. Each type has an IsValid
// backed by a single map so validation and docs cannot drift apart.

type Designation string

const (
	DesignationLtd  Designation = "ltd"
	DesignationInc  Designation = "inc"
	DesignationCorp Designation = "corp"
	DesignationLLC  Designation = "llc"
)

var validDesignations = map[Designation]bool{
	DesignationLtd: true, DesignationInc: true, DesignationCorp: true, DesignationLLC: true,
}

func (d Designation) IsValid() bool { return validDesignations[d] }

type Jurisdiction string

var validJurisdictions = map[Jurisdiction]bool{
	"us": true, "uk": true, "ca": true, "au": true, "de": true,
	"sg": true, "fr": true, "it": true, "es": true, "nl": true,
}

func (j Jurisdiction) IsValid() bool { return validJurisdictions[j] }

type ShareholderType string

const (
	ShareholderIndividual ShareholderType = "individual"
	ShareholderCorporate  ShareholderType = "corporate"
)

func (t ShareholderType) IsValid() bool {
	return t == ShareholderIndividual || t == ShareholderCorporate
}

type SourceOfFunds string

var validSourcesOfFunds = map[SourceOfFunds]bool{
	"salary": true, "business": true, "investment": true,
	"inheritance": true, "savings": true, "other": true,
}

func (s SourceOfFunds) IsValid() bool { return validSourcesOfFunds[s] }

type Occupation string

var validOccupations = map[Occupation]bool{
	"business_owner": true, "executive": true, "professional": true,
	"consultant": true, "investor": true, "retired": true, "other": true,
}

func (o Occupation) IsValid() bool { return validOccupations[o] }
