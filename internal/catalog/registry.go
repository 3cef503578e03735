// Package catalog holds the static domain taxonomy: domains, their list
// types, the entry table behind each list type, and the CSV sample template
// offered for bulk upload.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrUnknownListType is returned when a list type is not in the catalog.
var ErrUnknownListType = errors.New("unknown list type")

// Template describes the sample CSV offered for a list type.
// SampleRows are positionally aligned with Headers.
type Template struct {
	Headers    []string
	SampleRows [][]string
	Filename   string
}

// ListType is one kind of outreach list a domain can hold.
type ListType struct {
	Name     string // Display name, equal to the backend subdomain name
	Kind     Kind
	Template Template
}

// Domain is a top-level business category grouping list types.
type Domain struct {
	Key       string   // URL-safe identifier: "customer"
	Name      string   // Display name: "Customer / HCP"
	ListTypes []string // Ordered list type names
	BackendID int      // domain_id on the backend
}

var (
	listTypes  = make(map[string]ListType)
	domains    []Domain
	registryMu sync.RWMutex
)

// RegisterListType adds a list type to the catalog.
// Panics on duplicates or when the name does not map to a known kind.
func RegisterListType(lt ListType) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := listTypes[lt.Name]; exists {
		panic(fmt.Sprintf("list type already registered: %s", lt.Name))
	}
	if lt.Kind == KindUnknown {
		panic(fmt.Sprintf("list type %s has no entry table", lt.Name))
	}
	listTypes[lt.Name] = lt
}

// RegisterDomain adds a domain. Every list type it names must already be registered.
func RegisterDomain(d Domain) {
	registryMu.Lock()
	defer registryMu.Unlock()

	for _, existing := range domains {
		if existing.Key == d.Key || existing.BackendID == d.BackendID {
			panic(fmt.Sprintf("domain already registered: %s", d.Key))
		}
	}
	for _, name := range d.ListTypes {
		if _, ok := listTypes[name]; !ok {
			panic(fmt.Sprintf("domain %s references unregistered list type %s", d.Key, name))
		}
	}
	domains = append(domains, d)
}

// LookupListType returns the list type with the given name.
// The error names the closest registered list type when there is one.
func LookupListType(name string) (ListType, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if lt, ok := listTypes[name]; ok {
		return lt, nil
	}
	if s := suggest(name); s != "" {
		return ListType{}, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownListType, name, s)
	}
	return ListType{}, fmt.Errorf("%w %q", ErrUnknownListType, name)
}

// suggest returns the registered name closest to name, or "".
// Caller must hold registryMu.
func suggest(name string) string {
	if name == "" {
		return ""
	}
	names := make([]string, 0, len(listTypes))
	for n := range listTypes {
		names = append(names, n)
	}
	ranks := fuzzy.RankFindNormalizedFold(name, names)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

// ListTypes returns every registered list type sorted by name.
func ListTypes() []ListType {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]ListType, 0, len(listTypes))
	for _, lt := range listTypes {
		result = append(result, lt)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Domains returns all domains in registration order.
func Domains() []Domain {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Domain, len(domains))
	copy(result, domains)
	return result
}

// DomainByKey finds a domain by its key.
func DomainByKey(key string) (Domain, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, d := range domains {
		if d.Key == key {
			return d, true
		}
	}
	return Domain{}, false
}

// DomainByID finds a domain by its backend id.
func DomainByID(id int) (Domain, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, d := range domains {
		if d.BackendID == id {
			return d, true
		}
	}
	return Domain{}, false
}
