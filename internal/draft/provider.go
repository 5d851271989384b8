package draft

import (
	"strings"

	"github.com/tekus/provider-console/internal/api"
)

// Mode selects the provider editing surface.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit-provider"
	}
	return "create-provider"
}

// CustomFieldRow is one editable name/value pair.
type CustomFieldRow struct {
	ID    int
	Name  string
	Value string
}

// ServiceRow is one editable service with its country assignments.
type ServiceRow struct {
	ID           int
	Name         string
	ValuePerHour string
	Countries    Relations[api.Country, string]
}

// NewCountrySet returns an empty country relation set keyed by ISO code.
func NewCountrySet() Relations[api.Country, string] {
	return NewRelations(api.Country.Key)
}

func newServiceRow(s api.Service) ServiceRow {
	row := ServiceRow{
		ID:           s.ID,
		Name:         s.Name,
		ValuePerHour: s.ValuePerHourUSD,
		Countries:    NewCountrySet(),
	}
	row.Countries.Reset(s.Countries)
	return row
}

func (r ServiceRow) export() api.Service {
	return api.Service{
		ID:              r.ID,
		Name:            r.Name,
		ValuePerHourUSD: r.ValuePerHour,
		Countries:       r.Countries.Items(),
	}
}

// ProviderDraft is the working copy behind the create-provider and
// edit-provider surfaces.
type ProviderDraft struct {
	mode         Mode
	id           int
	name         string
	nit          string
	email        string
	customFields Rows[CustomFieldRow]
	services     Rows[ServiceRow]
	directory    []api.Country
}

// NewProviderDraft returns an empty provider tree for mode.
func NewProviderDraft(mode Mode) *ProviderDraft {
	return &ProviderDraft{
		mode:         mode,
		customFields: NewRows[CustomFieldRow](false),
		services:     NewRows[ServiceRow](true),
	}
}

func (d *ProviderDraft) Mode() Mode { return d.mode }
func (d *ProviderDraft) ID() int    { return d.id }

// NeedsDirectory is true for the create surface, which assigns countries.
func (d *ProviderDraft) NeedsDirectory() bool { return d.mode == ModeCreate }

func (d *ProviderDraft) UseDirectory(entries []api.Country) {
	d.directory = append([]api.Country(nil), entries...)
}

// Load replaces the draft with snapshot.
func (d *ProviderDraft) Load(snapshot api.Provider) {
	d.id = snapshot.ID
	d.name = snapshot.Name
	d.nit = snapshot.NIT
	d.email = snapshot.Email
	fields := make([]CustomFieldRow, 0, len(snapshot.CustomFields))
	for _, f := range snapshot.CustomFields {
		fields = append(fields, CustomFieldRow{ID: f.ID, Name: f.FieldName, Value: f.FieldValue})
	}
	d.customFields.Reset(fields)
	services := make([]ServiceRow, 0, len(snapshot.Services))
	for _, s := range snapshot.Services {
		services = append(services, newServiceRow(s))
	}
	d.services.Reset(services)
}

// Value returns a root scalar.
func (d *ProviderDraft) Value(field FieldID) string {
	switch field {
	case FieldProviderName:
		return d.name
	case FieldProviderNIT:
		return d.nit
	case FieldProviderEmail:
		return d.email
	}
	return ""
}

// Set edits a root scalar. Unknown fields are ignored.
func (d *ProviderDraft) Set(field FieldID, value string) {
	switch field {
	case FieldProviderName:
		d.name = value
	case FieldProviderNIT:
		d.nit = value
	case FieldProviderEmail:
		d.email = value
	}
}

// --- Custom fields ---

func (d *ProviderDraft) CustomFields() []CustomFieldRow { return d.customFields.Items() }

func (d *ProviderDraft) AddCustomField() int {
	return d.customFields.Add(CustomFieldRow{})
}

func (d *ProviderDraft) RemoveCustomField(index int) bool {
	return d.customFields.RemoveAt(index)
}

// SetCustomField edits the name or value of a custom field row.
func (d *ProviderDraft) SetCustomField(index int, field FieldID, value string) bool {
	return d.customFields.Update(index, func(row *CustomFieldRow) {
		switch field {
		case FieldCustomFieldName:
			row.Name = value
		case FieldCustomFieldValue:
			row.Value = value
		}
	})
}

// --- Services ---

func (d *ProviderDraft) Services() []ServiceRow { return d.services.Items() }
func (d *ProviderDraft) ServiceCount() int      { return d.services.Len() }

// CurrentService is the index of the service being edited, NoRow if none.
func (d *ProviderDraft) CurrentService() int { return d.services.Current() }

func (d *ProviderDraft) SelectService(index int) bool { return d.services.Select(index) }

// AddService appends an empty service and makes it current.
func (d *ProviderDraft) AddService() int {
	return d.services.Add(ServiceRow{Countries: NewCountrySet()})
}

func (d *ProviderDraft) RemoveService(index int) bool {
	return d.services.RemoveAt(index)
}

// SetService edits the name or value per hour of a service row.
func (d *ProviderDraft) SetService(index int, field FieldID, value string) bool {
	return d.services.Update(index, func(row *ServiceRow) {
		switch field {
		case FieldServiceName:
			row.Name = value
		case FieldServiceValuePerHour:
			row.ValuePerHour = value
		}
	})
}

// AddCountry assigns country to a service. Duplicates are ignored.
func (d *ProviderDraft) AddCountry(service int, country api.Country) bool {
	added := false
	d.services.Update(service, func(row *ServiceRow) {
		added = row.Countries.Add(country)
	})
	return added
}

// RemoveCountry unassigns the country with key from a service.
func (d *ProviderDraft) RemoveCountry(service int, key string) bool {
	removed := false
	d.services.Update(service, func(row *ServiceRow) {
		removed = row.Countries.Remove(key)
	})
	return removed
}

// AvailableCountries lists directory entries not yet assigned to service.
func (d *ProviderDraft) AvailableCountries(service int) []api.Country {
	row, ok := d.services.At(service)
	if !ok {
		return nil
	}
	return Available(&row.Countries, d.directory)
}

// --- Tree ---

// Validate checks every scalar, every row and the required collections.
func (d *ProviderDraft) Validate() Report {
	var r Report
	r.check(PathName, FieldProviderName, d.name)
	r.check(PathNIT, FieldProviderNIT, d.nit)
	r.check(PathEmail, FieldProviderEmail, d.email)
	for i, f := range d.customFields.items {
		r.check(RowPath(PathCustomFields, i, PathFieldName), FieldCustomFieldName, f.Name)
		r.check(RowPath(PathCustomFields, i, PathFieldValue), FieldCustomFieldValue, f.Value)
	}
	r.require(PathServices, d.services.Len())
	for i, s := range d.services.items {
		r.check(RowPath(PathServices, i, PathName), FieldServiceName, s.Name)
		r.check(RowPath(PathServices, i, PathValuePerHour), FieldServiceValuePerHour, s.ValuePerHour)
		r.require(RowPath(PathServices, i, PathCountries), s.Countries.Len())
	}
	return r
}

// Differs compares the draft's complete rows against snapshot.
func (d *ProviderDraft) Differs(snapshot api.Provider) bool {
	return providersDiffer(d.export(), snapshot)
}

// Sanitize returns the provider with incomplete rows dropped.
func (d *ProviderDraft) Sanitize() api.Provider {
	p := d.export()
	p.CustomFields = completeCustomFields(p.CustomFields)
	p.Services = completeServices(p.Services)
	return p
}

func (d *ProviderDraft) export() api.Provider {
	p := api.Provider{
		ID:           d.id,
		Name:         d.name,
		NIT:          d.nit,
		Email:        d.email,
		CustomFields: make([]api.CustomField, 0, d.customFields.Len()),
		Services:     make([]api.Service, 0, d.services.Len()),
	}
	for _, f := range d.customFields.items {
		p.CustomFields = append(p.CustomFields, api.CustomField{ID: f.ID, FieldName: f.Name, FieldValue: f.Value})
	}
	for _, s := range d.services.items {
		p.Services = append(p.Services, s.export())
	}
	return p
}

// --- Change detection ---

func filled(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

func completeCustomFields(fields []api.CustomField) []api.CustomField {
	out := make([]api.CustomField, 0, len(fields))
	for _, f := range fields {
		if filled(f.FieldName, f.FieldValue) {
			out = append(out, f)
		}
	}
	return out
}

func completeServices(services []api.Service) []api.Service {
	out := make([]api.Service, 0, len(services))
	for _, s := range services {
		if filled(s.Name, s.ValuePerHourUSD) {
			out = append(out, s)
		}
	}
	return out
}

func providersDiffer(a, b api.Provider) bool {
	if a.Name != b.Name || a.NIT != b.NIT || a.Email != b.Email {
		return true
	}
	fa, fb := completeCustomFields(a.CustomFields), completeCustomFields(b.CustomFields)
	if len(fa) != len(fb) {
		return true
	}
	for i := range fa {
		if fa[i].FieldName != fb[i].FieldName || fa[i].FieldValue != fb[i].FieldValue {
			return true
		}
	}
	sa, sb := completeServices(a.Services), completeServices(b.Services)
	if len(sa) != len(sb) {
		return true
	}
	for i := range sa {
		if servicesDiffer(sa[i], sb[i]) {
			return true
		}
	}
	return false
}

func servicesDiffer(a, b api.Service) bool {
	if a.Name != b.Name || a.ValuePerHourUSD != b.ValuePerHourUSD {
		return true
	}
	return !sameKeys(a.Countries, b.Countries, api.Country.Key)
}
