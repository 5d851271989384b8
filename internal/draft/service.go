package draft

import "github.com/tekus/provider-console/internal/api"

// ServiceDraft is the working copy behind the edit-service surface.
type ServiceDraft struct {
	row       ServiceRow
	directory []api.Country
}

func NewServiceDraft() *ServiceDraft {
	return &ServiceDraft{row: ServiceRow{Countries: NewCountrySet()}}
}

func (d *ServiceDraft) NeedsDirectory() bool { return true }

func (d *ServiceDraft) UseDirectory(entries []api.Country) {
	d.directory = append([]api.Country(nil), entries...)
}

func (d *ServiceDraft) Load(snapshot api.Service) {
	d.row = newServiceRow(snapshot)
}

func (d *ServiceDraft) ID() int { return d.row.ID }

func (d *ServiceDraft) Value(field FieldID) string {
	switch field {
	case FieldServiceName:
		return d.row.Name
	case FieldServiceValuePerHour:
		return d.row.ValuePerHour
	}
	return ""
}

func (d *ServiceDraft) Set(field FieldID, value string) {
	switch field {
	case FieldServiceName:
		d.row.Name = value
	case FieldServiceValuePerHour:
		d.row.ValuePerHour = value
	}
}

func (d *ServiceDraft) Countries() []api.Country { return d.row.Countries.Items() }

func (d *ServiceDraft) AddCountry(country api.Country) bool {
	return d.row.Countries.Add(country)
}

func (d *ServiceDraft) RemoveCountry(key string) bool {
	return d.row.Countries.Remove(key)
}

func (d *ServiceDraft) AvailableCountries() []api.Country {
	return Available(&d.row.Countries, d.directory)
}

func (d *ServiceDraft) Validate() Report {
	var r Report
	r.check(PathName, FieldServiceName, d.row.Name)
	r.check(PathValuePerHour, FieldServiceValuePerHour, d.row.ValuePerHour)
	r.require(PathCountries, d.row.Countries.Len())
	return r
}

func (d *ServiceDraft) Differs(snapshot api.Service) bool {
	return servicesDiffer(d.row.export(), snapshot)
}

func (d *ServiceDraft) Sanitize() api.Service {
	return d.row.export()
}
