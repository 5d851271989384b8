package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tekus/provider-console/internal/api"
	"github.com/tekus/provider-console/internal/directory"
	"github.com/tekus/provider-console/internal/ui/components"
)

// --- Messages ---

// serviceSelectedMsg carries a value published on the service slot. gen ties
// it to the subscription that produced it.
type serviceSelectedMsg struct {
	gen     int
	service api.Service
}
type serviceDeletedMsg struct {
	providerID int
	message    string
}

func waitForService(ch <-chan api.Service, gen int) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return serviceSelectedMsg{gen: gen, service: s}
	}
}

// openService publishes the selection and subscribes the detail view to it.
func (m ProvidersModel) openService(p api.Provider, index int) (ProvidersModel, tea.Cmd) {
	m.closeService()
	svc := p.Services[index].Clone()
	m.providerSlot.Set(p)
	m.serviceSlot.Set(svc)
	m.service = &svc
	m.serviceIndex = index
	m.serviceGen++
	m.serviceCh, m.serviceCancel = m.serviceSlot.Subscribe()
	m.view = providersViewService
	return m, waitForService(m.serviceCh, m.serviceGen)
}

func (m *ProvidersModel) closeService() {
	if m.serviceCancel != nil {
		m.serviceCancel()
	}
	m.serviceCancel = nil
	m.serviceCh = nil
	m.service = nil
	m.confirmService = false
	m.serviceSlot.Clear()
}

func (m ProvidersModel) handleServiceSelected(msg serviceSelectedMsg) (ProvidersModel, tea.Cmd) {
	if msg.gen != m.serviceGen || m.serviceCh == nil {
		return m, nil
	}
	svc := msg.service
	m.service = &svc
	return m, waitForService(m.serviceCh, msg.gen)
}

func (m ProvidersModel) handleServiceKeys(msg tea.KeyMsg) (ProvidersModel, tea.Cmd) {
	if m.service == nil {
		m.view = providersViewDetail
		return m, nil
	}
	if m.confirmService {
		switch {
		case isKey(msg, "y"):
			return m, m.deleteService()
		case isKey(msg, "n"), isBack(msg):
			m.confirmService = false
		}
		return m, nil
	}
	switch {
	case isBack(msg):
		m.closeService()
		m.view = providersViewDetail
	case isKey(msg, "e"):
		return m.openServiceForm()
	case isKey(msg, "d"):
		m.confirmService = true
	}
	return m, nil
}

// deleteService removes the service from its provider and saves the
// provider.
func (m ProvidersModel) deleteService() tea.Cmd {
	p, ok := m.providerSlot.Get()
	if !ok || m.serviceIndex < 0 || m.serviceIndex >= len(p.Services) {
		return nil
	}
	updated := p.Clone()
	i := m.serviceIndex
	updated.Services = append(updated.Services[:i:i], updated.Services[i+1:]...)
	client := m.client
	return func() tea.Msg {
		resp, err := client.UpdateProvider(context.Background(), updated)
		if err != nil {
			return errMsg{fmt.Errorf("delete service: %w", err)}
		}
		return serviceDeletedMsg{providerID: updated.ID, message: resp.Message}
	}
}

func (m ProvidersModel) renderService() string {
	if m.service == nil {
		return m.renderDetail()
	}
	s := m.service
	owner := ""
	if p, ok := m.providerSlot.Get(); ok {
		owner = p.Name
	}
	sections := []string{components.Table("Service", []components.TableRow{
		{Label: "Name", Value: s.Name},
		{Label: "Provider", Value: owner},
		{Label: "Value per hour", Value: api.FormatUSD(s.ValuePerHourUSD)},
	}, m.width)}

	if len(s.Countries) == 0 {
		sections = append(sections, components.TitledBox("Countries", MutedStyle.Render("No countries assigned."), m.width))
	} else {
		lines := make([]string, 0, len(s.Countries))
		for _, c := range s.Countries {
			lines = append(lines, fmt.Sprintf("%s  %-18s %s", ChipStyle.Render(c.Key()), c.Name, MutedStyle.Render(directory.Flag(c))))
		}
		sections = append(sections, components.TitledBox("Countries", strings.Join(lines, "\n"), m.width))
	}

	if m.confirmService {
		sections = append(sections, components.ConfirmDialog("Delete Service", fmt.Sprintf("Remove %s from %s?", s.Name, owner)))
	}
	return strings.Join(sections, "\n\n")
}

// --- Edit service ---

func (m ProvidersModel) openServiceForm() (ProvidersModel, tea.Cmd) {
	p, ok := m.providerSlot.Get()
	if !ok || m.service == nil {
		return m, nil
	}
	m.serviceForm = NewServiceForm(m.client, p, m.serviceIndex, m.logger)
	m.serviceForm.width = m.width
	m.view = providersViewServiceForm
	return m, m.loadDirectory
}

// afterServiceForm publishes a saved service so the detail view refreshes.
func (m ProvidersModel) afterServiceForm(cmd tea.Cmd) (ProvidersModel, tea.Cmd) {
	if !m.serviceForm.closed {
		return m, cmd
	}
	m.view = providersViewService
	outcome := m.serviceForm.session.Outcome()
	if !outcome.Saved || outcome.Entity == nil {
		return m, cmd
	}
	m.serviceSlot.Set(*outcome.Entity)
	m.loading = true
	text := "Service saved"
	if m.serviceForm.message != "" {
		text = m.serviceForm.message
	}
	return m, tea.Batch(cmd, m.loadProviders, toastCmd("success", text))
}
