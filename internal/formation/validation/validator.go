// Package validation turns a client payload into a models.ApplicationForm.
//
// Structural rules run for every field and all failures are collected. The
// two cross-field rules (shareholding sums to exactly 100, issued shares do
// not exceed total shares) only run once the values they read are
// structurally valid, so a malformed percentage yields one error rather than
// a misleading sum error.
package validation

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"formation/internal/formation/models"
	dErrors "formation/pkg/domain-errors"
	"formation/pkg/platform/strings"
)

const (
	maxNameLength        = 255
	minNameLength        = 2
	maxNationalityLength = 100
	minAddressLength     = 10
	maxAddressLength     = 500
	maxPassportLength    = 50
	maxRegistrationLen   = 100
	minExperienceLength  = 10
	maxExperienceLength  = 1000

	MessageShareTotal   = "Total share percentage must equal 100%"
	MessageIssuedShares = "Number of issued shares cannot exceed total number of shares"
	MessageFailed       = "Validation failed"
)

var minShareValue = decimal.RequireFromString("0.01")

// Validate checks p as of today and returns the normalized form, or a
// CodeValidation error whose Fields hold every violation found.
func Validate(p *Payload, today time.Time) (*models.ApplicationForm, error) {
	if p == nil {
		p = &Payload{}
	}
	c := newChecker(today)
	form := &models.ApplicationForm{}

	c.pointOfContact(p.PointOfContact, &form.PointOfContact)
	c.companyInfo(p.CompanyInfo, &form.CompanyInfo)
	c.countries(p.CountriesOfInterest, &form.CountriesOfInterest)
	sharesOK := c.sharesStructure(p.SharesStructure, &form.SharesStructure)
	percentagesOK := c.shareholders(p.Shareholders, form)
	c.beneficialOwners(p.BeneficialOwners, form)
	c.directors(p.Directors, form)

	if percentagesOK && !form.TotalSharePercentage().Equal(hundred) {
		c.fields.Add("shareholders", MessageShareTotal)
	}
	if sharesOK {
		s := form.SharesStructure
		if !s.AllSharesIssued && s.NumberOfIssuedShares != nil && *s.NumberOfIssuedShares > s.NumberOfShares {
			c.fields.Add("shares_structure.number_of_issued_shares", MessageIssuedShares)
		}
	}

	if !c.fields.Empty() {
		return nil, dErrors.Validation(MessageFailed, c.fields)
	}
	return form, nil
}

func (c *checker) pointOfContact(v Object[PointOfContactInput], out *models.PointOfContact) {
	if !c.object("point_of_contact", v.Present(), v.Valid()) {
		return
	}
	in := v.Value()
	out.FullName, _ = c.text("point_of_contact.full_name", in.FullName, minNameLength, maxNameLength)
	out.Email, _ = c.email("point_of_contact.email", in.Email)
}

func (c *checker) companyInfo(v Object[CompanyInfoInput], out *models.CompanyInfo) {
	if !c.object("company_info", v.Present(), v.Valid()) {
		return
	}
	in := v.Value()
	out.CompanyName, _ = c.text("company_info.company_name", in.CompanyName, minNameLength, maxNameLength)
	out.AlternativeCompanyName, _ = c.optionalText("company_info.alternative_company_name", in.AlternativeCompanyName, maxNameLength)
	designation, _ := c.oneOf("company_info.designation", in.Designation, func(v string) bool {
		return models.Designation(v).IsValid()
	})
	out.Designation = models.Designation(designation)
}

func (c *checker) countries(v Object[CountriesOfInterestInput], out *models.CountriesOfInterest) {
	if !c.object("countries_of_interest", v.Present(), v.Valid()) {
		return
	}
	in := v.Value()
	jurisdiction, _ := c.oneOf("countries_of_interest.jurisdiction_of_operation", in.JurisdictionOfOperation, func(v string) bool {
		return models.Jurisdiction(v).IsValid()
	})
	out.JurisdictionOfOperation = models.Jurisdiction(jurisdiction)

	const targets = "countries_of_interest.target_jurisdictions"
	if !in.TargetJurisdictions.Present() {
		return
	}
	if !in.TargetJurisdictions.Valid() {
		c.fail(targets, "The %s field must be an array.", attribute(targets))
		return
	}
	codes := make([]string, 0, len(in.TargetJurisdictions.Items()))
	for i, t := range in.TargetJurisdictions.Items() {
		if !t.Valid() {
			path := targets + "." + strconv.Itoa(i)
			c.fail(path, "The %s field must be a string.", attribute(path))
			continue
		}
		codes = append(codes, t.String())
	}
	out.TargetJurisdictions = strings.DedupeAndTrimLower(codes)
}

// sharesStructure reports whether the fields the issued-shares rule reads are valid.
func (c *checker) sharesStructure(v Object[SharesStructureInput], out *models.SharesStructure) bool {
	if !c.object("shares_structure", v.Present(), v.Valid()) {
		return false
	}
	in := v.Value()
	total, totalOK := c.positiveInteger("shares_structure.number_of_shares", in.NumberOfShares)
	out.NumberOfShares = total

	allIssued, issuedFlagOK := c.boolean("shares_structure.all_shares_issued", in.AllSharesIssued)
	out.AllSharesIssued = allIssued

	issuedOK := true
	if in.NumberOfIssuedShares.Present() {
		var issued int64
		issued, issuedOK = c.positiveInteger("shares_structure.number_of_issued_shares", in.NumberOfIssuedShares)
		if issuedOK {
			out.NumberOfIssuedShares = &issued
		}
	}

	out.ValuePerShare, _ = c.atLeast("shares_structure.value_per_share", in.ValuePerShare, minShareValue)
	return totalOK && issuedFlagOK && issuedOK
}

func (c *checker) person(prefix string, in PersonInput, out *models.Person, strict bool) {
	out.FullName, _ = c.text(prefix+".full_name", in.FullName, minNameLength, maxNameLength)
	out.Nationality, _ = c.text(prefix+".nationality", in.Nationality, 0, maxNationalityLength)
	out.Address, _ = c.text(prefix+".address", in.Address, minAddressLength, maxAddressLength)
	out.DateOfBirth, _ = c.pastDate(prefix+".date_of_birth", in.DateOfBirth, strict)
	if strict {
		out.PassportNumber, _ = c.requiredText(prefix+".passport_number", in.PassportNumber, maxPassportLength)
	} else {
		out.PassportNumber, _ = c.optionalText(prefix+".passport_number", in.PassportNumber, maxPassportLength)
	}
}

// entries checks a required party list and returns the entries that are
// objects, keyed by their index in the list.
func entries[T any](c *checker, path string, v List[Object[T]]) (map[int]T, int) {
	items := v.Items()
	if !c.list(path, v.Present(), v.Valid(), len(items)) {
		return nil, 0
	}
	out := make(map[int]T, len(items))
	for i, item := range items {
		entry := path + "." + strconv.Itoa(i)
		if c.object(entry, item.Present(), item.Valid()) {
			out[i] = item.Value()
		}
	}
	return out, len(items)
}

// shareholders reports whether every share_percentage is valid, which gates
// the sum rule.
func (c *checker) shareholders(v List[Object[ShareholderInput]], form *models.ApplicationForm) bool {
	in, n := entries(c, "shareholders", v)
	if n == 0 {
		return false
	}
	allValid := len(in) == n
	form.Shareholders = make([]models.Shareholder, n)
	for i := 0; i < n; i++ {
		sh, ok := in[i]
		if !ok {
			continue
		}
		prefix := "shareholders." + strconv.Itoa(i)
		out := &form.Shareholders[i]

		typ, _ := c.oneOf(prefix+".type", sh.Type, func(v string) bool {
			return models.ShareholderType(v).IsValid()
		})
		out.Type = models.ShareholderType(typ)
		c.person(prefix, sh.PersonInput, &out.Person, false)

		pct, ok := c.percentage(prefix+".share_percentage", sh.SharePercentage)
		out.SharePercentage = pct
		allValid = allValid && ok

		out.CorporateName, _ = c.optionalText(prefix+".corporate_name", sh.CorporateName, maxNameLength)
		out.RegistrationNumber, _ = c.optionalText(prefix+".registration_number", sh.RegistrationNumber, maxRegistrationLen)
	}
	return allValid
}

func (c *checker) beneficialOwners(v List[Object[BeneficialOwnerInput]], form *models.ApplicationForm) {
	in, n := entries(c, "beneficial_owners", v)
	form.BeneficialOwners = make([]models.BeneficialOwner, n)
	for i := 0; i < n; i++ {
		bo, ok := in[i]
		if !ok {
			continue
		}
		prefix := "beneficial_owners." + strconv.Itoa(i)
		out := &form.BeneficialOwners[i]

		c.person(prefix, bo.PersonInput, &out.Person, true)
		out.OwnershipPercentage, _ = c.percentage(prefix+".ownership_percentage", bo.OwnershipPercentage)
		source, _ := c.oneOf(prefix+".source_of_funds", bo.SourceOfFunds, func(v string) bool {
			return models.SourceOfFunds(v).IsValid()
		})
		out.SourceOfFunds = models.SourceOfFunds(source)
		out.PoliticallyExposed, _ = c.boolean(prefix+".politically_exposed", bo.PoliticallyExposed)
	}
}

func (c *checker) directors(v List[Object[DirectorInput]], form *models.ApplicationForm) {
	in, n := entries(c, "directors", v)
	form.Directors = make([]models.Director, n)
	for i := 0; i < n; i++ {
		d, ok := in[i]
		if !ok {
			continue
		}
		prefix := "directors." + strconv.Itoa(i)
		out := &form.Directors[i]

		c.person(prefix, d.PersonInput, &out.Person, true)
		occupation, _ := c.oneOf(prefix+".occupation", d.Occupation, func(v string) bool {
			return models.Occupation(v).IsValid()
		})
		out.Occupation = models.Occupation(occupation)
		out.Experience, _ = c.text(prefix+".experience", d.Experience, minExperienceLength, maxExperienceLength)

		consent, ok := c.boolean(prefix+".consent_to_act", d.ConsentToAct)
		if ok && !consent {
			c.fail(prefix+".consent_to_act", "The %s field must be accepted.", attribute(prefix+".consent_to_act"))
		}
		out.ConsentToAct = consent
	}
}
