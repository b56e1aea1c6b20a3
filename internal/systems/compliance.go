package systems

import (
	"fmt"
	"sort"
	"time"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

// DocumentKind distinguishes permits from licenses.
type DocumentKind string

const (
	DocumentPermit  DocumentKind = "permit"
	DocumentLicense DocumentKind = "license"
)

// DocumentStatus tracks a permit or license through its validity.
type DocumentStatus string

const (
	DocumentActive       DocumentStatus = "Active"
	DocumentExpiringSoon DocumentStatus = "Expiring Soon"
	DocumentExpired      DocumentStatus = "Expired"
)

const (
	day                  = 24 * time.Hour
	permitWarningWindow  = 7 * day
	licenseWarningWindow = 30 * day
	renewalPeriod        = 365 * day
)

// DocumentConfig describes a permit or license held by the festival.
type DocumentConfig struct {
	ID     string       `yaml:"id"`
	Type   string       `yaml:"type"`
	Kind   DocumentKind `yaml:"kind"`
	Expiry time.Time    `yaml:"expiry"`
	Cost   float64      `yaml:"cost"`
}

// ComplianceMetrics is the compliance domain's snapshot entry.
type ComplianceMetrics struct {
	Documents    int               `json:"documents"`
	Active       int               `json:"active"`
	ExpiringSoon int               `json:"expiring_soon"`
	Expired      int               `json:"expired"`
	Violations   int               `json:"violations"`
	Open         int               `json:"open_violations"`
	Renewals     int               `json:"renewals"`
	Pending      []string          `json:"pending_renewals"`
	Status       map[string]string `json:"status"`
}

type document struct {
	cfg    DocumentConfig
	status DocumentStatus
}

// Compliance watches permit and license expiry dates. An expiry publishes
// PermitExpired or LicenseExpired and raises a violation costing twice the
// document's fee.
type Compliance struct {
	docs       []*document
	violations int
	fixed      int
	renewals   int
	pending    map[string]bool
}

// NewCompliance constructs the compliance subsystem.
func NewCompliance(docs []DocumentConfig) *Compliance {
	c := &Compliance{pending: make(map[string]bool)}
	for _, cfg := range docs {
		if cfg.Kind == "" {
			cfg.Kind = DocumentPermit
		}
		c.docs = append(c.docs, &document{cfg: cfg, status: DocumentActive})
	}
	return c
}

func (c *Compliance) Domain() festival.Domain { return festival.DomainCompliance }

func (c *Compliance) Process(t *festival.Tick) error {
	if err := requireWorld(t); err != nil {
		return err
	}
	for _, d := range c.docs {
		if d.status == DocumentExpired {
			continue
		}
		left := d.cfg.Expiry.Sub(t.Now)
		switch {
		case left <= 0:
			d.status = DocumentExpired
			c.expire(t, d)
		case left <= c.window(d.cfg.Kind):
			d.status = DocumentExpiringSoon
		default:
			d.status = DocumentActive
		}
	}
	return nil
}

func (c *Compliance) window(kind DocumentKind) time.Duration {
	if kind == DocumentLicense {
		return licenseWarningWindow
	}
	return permitWarningWindow
}

func (c *Compliance) expire(t *festival.Tick, d *document) {
	if d.cfg.Kind == DocumentLicense {
		t.Publish(festival.LicenseExpired{
			LicenseID: d.cfg.ID, LicenseType: d.cfg.Type, Cost: d.cfg.Cost, At: t.Now,
		})
	} else {
		t.Publish(festival.PermitExpired{
			PermitID: d.cfg.ID, PermitType: d.cfg.Type, Cost: d.cfg.Cost, At: t.Now,
		})
	}
	c.violations++
	inc := festival.NewIncident(
		festival.IncidentCompliance,
		festival.SeverityHigh,
		fmt.Sprintf("%s %s has expired", d.cfg.Kind, d.cfg.Type),
		t.Now,
		d.cfg.Cost*2,
	)
	inc.Zone = "Venue Wide"
	inc.Response.Actions = []string{"Immediate renewal required", "Contact licensing authority"}
	t.Publish(festival.IncidentRaised{Incident: inc})
}

// ProcessDecision renews documents, clears violations and queues expired
// documents for renewal.
func (c *Compliance) ProcessDecision(t *festival.Tick, d festival.Decision) {
	p, ok := d.Payload.(festival.ComplianceDecision)
	if !ok {
		return
	}
	switch p.Action {
	case festival.ComplianceRenewPermit, festival.ComplianceRenewLicense:
		doc := c.find(p.DocumentID)
		if doc == nil || t == nil {
			return
		}
		doc.cfg.Expiry = t.Now.Add(renewalPeriod)
		doc.status = DocumentActive
		delete(c.pending, doc.cfg.ID)
		c.renewals++
	case festival.ComplianceFixViolation:
		if c.fixed < c.violations {
			c.fixed++
		}
	case festival.CompliancePermitExpiry, festival.ComplianceLicenseExpiry:
		if doc := c.find(p.DocumentID); doc != nil {
			c.pending[doc.cfg.ID] = true
		}
	}
}

func (c *Compliance) find(id string) *document {
	for _, d := range c.docs {
		if d.cfg.ID == id {
			return d
		}
	}
	return nil
}

// Status returns the status of document id.
func (c *Compliance) Status(id string) (DocumentStatus, bool) {
	d := c.find(id)
	if d == nil {
		return "", false
	}
	return d.status, true
}

func (c *Compliance) Metrics() any {
	m := ComplianceMetrics{
		Documents:  len(c.docs),
		Violations: c.violations,
		Open:       c.violations - c.fixed,
		Renewals:   c.renewals,
		Pending:    make([]string, 0, len(c.pending)),
		Status:     make(map[string]string, len(c.docs)),
	}
	for _, d := range c.docs {
		m.Status[d.cfg.ID] = string(d.status)
		switch d.status {
		case DocumentActive:
			m.Active++
		case DocumentExpiringSoon:
			m.ExpiringSoon++
		case DocumentExpired:
			m.Expired++
		}
	}
	for id := range c.pending {
		m.Pending = append(m.Pending, id)
	}
	sort.Strings(m.Pending)
	return m
}
