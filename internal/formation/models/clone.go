package models

import "slices"

// Clone returns a deep copy of a. Nothing in the copy aliases a's slices or
// pointers.
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	cp := *a
	cp.AlternativeCompanyName = clonePtr(a.AlternativeCompanyName)
	cp.Form = a.Form.Clone()
	cp.SubmittedAt = clonePtr(a.SubmittedAt)
	cp.ProcessedAt = clonePtr(a.ProcessedAt)
	cp.DeletedAt = clonePtr(a.DeletedAt)
	return &cp
}

// Clone returns a deep copy of f.
func (f ApplicationForm) Clone() ApplicationForm {
	cp := f
	cp.CompanyInfo.AlternativeCompanyName = clonePtr(f.CompanyInfo.AlternativeCompanyName)
	cp.CountriesOfInterest.TargetJurisdictions = slices.Clone(f.CountriesOfInterest.TargetJurisdictions)
	cp.SharesStructure.NumberOfIssuedShares = clonePtr(f.SharesStructure.NumberOfIssuedShares)

	cp.Shareholders = slices.Clone(f.Shareholders)
	for i := range cp.Shareholders {
		sh := &cp.Shareholders[i]
		sh.Person = sh.Person.clone()
		sh.CorporateName = clonePtr(sh.CorporateName)
		sh.RegistrationNumber = clonePtr(sh.RegistrationNumber)
	}
	cp.BeneficialOwners = slices.Clone(f.BeneficialOwners)
	for i := range cp.BeneficialOwners {
		cp.BeneficialOwners[i].Person = cp.BeneficialOwners[i].Person.clone()
	}
	cp.Directors = slices.Clone(f.Directors)
	for i := range cp.Directors {
		cp.Directors[i].Person = cp.Directors[i].Person.clone()
	}
	return cp
}

func (p Person) clone() Person {
	p.DateOfBirth = clonePtr(p.DateOfBirth)
	p.PassportNumber = clonePtr(p.PassportNumber)
	return p
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
