package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTableMapping is returned when a subdomain name has no backing
// entry table. Imports against such a subdomain must not proceed.
var ErrUnknownTableMapping = errors.New("unknown table mapping")

// Kind enumerates the subdomain kinds the client knows how to store.
type Kind int

const (
	KindUnknown Kind = iota
	KindTargetList
	KindCallList
	KindFormularyDecisionMaker
	KindIDNHealthSystem
	KindEventInvitation
	KindDigitalEngagement
	KindHighValuePrescriber
	KindCompetitorTarget
)

// kindEntry ties a kind to its subdomain display name and backend collection.
type kindEntry struct {
	subdomain string
	table     string
}

var kindEntries = map[Kind]kindEntry{
	KindTargetList:             {"Target Lists", "target_list"},
	KindCallList:               {"Call Lists", "call_list_entries"},
	KindFormularyDecisionMaker: {"Formulary Decision-Maker Lists", "formulary_decision_maker_entries"},
	KindIDNHealthSystem:        {"IDN/Health System Lists", "idn_health_system_entries"},
	KindEventInvitation:        {"Event Invitation Lists", "event_invitation_entries"},
	KindDigitalEngagement:      {"Digital Engagement Lists", "digital_engagement_entries"},
	KindHighValuePrescriber:    {"High-Value Prescriber Lists", "high_value_prescriber_entries"},
	KindCompetitorTarget:       {"Competitor Target Lists", "competitor_target_entries"},
}

// KindOf maps a subdomain name to its kind. Matching ignores surrounding
// whitespace but is otherwise exact; anything else is KindUnknown.
func KindOf(subdomainName string) Kind {
	name := strings.TrimSpace(subdomainName)
	for k, e := range kindEntries {
		if e.subdomain == name {
			return k
		}
	}
	return KindUnknown
}

// String returns the subdomain display name, or "unknown".
func (k Kind) String() string {
	if e, ok := kindEntries[k]; ok {
		return e.subdomain
	}
	return "unknown"
}

// Table returns the backing entry table for k.
func (k Kind) Table() (string, error) {
	e, ok := kindEntries[k]
	if !ok {
		return "", ErrUnknownTableMapping
	}
	return e.table, nil
}

// ResolveTable returns the entry table that stores rows for a subdomain.
func ResolveTable(subdomainName string) (string, error) {
	table, err := KindOf(subdomainName).Table()
	if err != nil {
		return "", fmt.Errorf("%w for subdomain %q", err, subdomainName)
	}
	return table, nil
}
