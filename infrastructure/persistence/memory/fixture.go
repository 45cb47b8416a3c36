package memory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"casegraph/application/ports"

	"gopkg.in/yaml.v3"
)

// Fixture is the on-disk shape of a demo data set. Every record is a plain
// property bag using the store's property names; the link fields below tie
// records together and are not copied onto the entities.
//
//	cases:        case_id, transaction_id
//	transactions: id, employee_id, merchant
//	employees:    id
//	merchants:    name, mcc
//	mccs:         code
type Fixture struct {
	Cases        []map[string]any `yaml:"cases" json:"cases"`
	Transactions []map[string]any `yaml:"transactions" json:"transactions"`
	Employees    []map[string]any `yaml:"employees" json:"employees"`
	Merchants    []map[string]any `yaml:"merchants" json:"merchants"`
	MCCs         []map[string]any `yaml:"mccs" json:"mccs"`
}

const (
	linkTransactionID = "transaction_id"
	linkEmployeeID    = "employee_id"
	linkMerchant      = "merchant"
	linkMCC           = "mcc"
)

// LoadFixture reads a fixture file. Files ending in .json are decoded as
// JSON with numbers preserved; anything else is decoded as YAML.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", path, err)
	}
	return ParseFixture(data, filepath.Ext(path))
}

// ParseFixture decodes fixture bytes; ext selects the format
func ParseFixture(data []byte, ext string) (*Fixture, error) {
	var f Fixture
	if strings.EqualFold(ext, ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to decode JSON fixture: %w", err)
		}
		return &f, nil
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode YAML fixture: %w", err)
	}
	return &f, nil
}

// snapshot is an indexed, immutable view of a fixture
type snapshot struct {
	cases        map[string]*ports.Entity
	caseTx       map[string]string
	transactions map[string]*ports.Entity
	txEmployee   map[string]string
	txMerchant   map[string]string
	employees    map[string]*ports.Entity
	merchants    map[string]*ports.Entity
	merchantMCC  map[string]string
	mccs         map[string]*ports.Entity

	employeeTxs map[string][]string
	txCases     map[string][]string
}

func keyOf(props map[string]any, key string) string {
	return (&ports.Entity{Properties: props}).StringProp(key)
}

func entityFrom(props map[string]any, label string, links ...string) *ports.Entity {
	clean := make(map[string]any, len(props))
	for k, v := range props {
		clean[k] = v
	}
	for _, l := range links {
		delete(clean, l)
	}
	return ports.NewEntity(clean, label)
}

func newSnapshot(f *Fixture) (*snapshot, error) {
	s := &snapshot{
		cases:        map[string]*ports.Entity{},
		caseTx:       map[string]string{},
		transactions: map[string]*ports.Entity{},
		txEmployee:   map[string]string{},
		txMerchant:   map[string]string{},
		employees:    map[string]*ports.Entity{},
		merchants:    map[string]*ports.Entity{},
		merchantMCC:  map[string]string{},
		mccs:         map[string]*ports.Entity{},
		employeeTxs:  map[string][]string{},
		txCases:      map[string][]string{},
	}
	if f == nil {
		return s, nil
	}

	for i, props := range f.Cases {
		id := keyOf(props, ports.PropCaseID)
		if id == "" {
			return nil, fmt.Errorf("case #%d has no %s", i, ports.PropCaseID)
		}
		if _, dup := s.cases[id]; dup {
			continue
		}
		s.cases[id] = entityFrom(props, "Case", linkTransactionID)
		if tx := keyOf(props, linkTransactionID); tx != "" {
			s.caseTx[id] = tx
			s.txCases[tx] = append(s.txCases[tx], id)
		}
	}
	for i, props := range f.Transactions {
		id := keyOf(props, ports.PropID)
		if id == "" {
			return nil, fmt.Errorf("transaction #%d has no %s", i, ports.PropID)
		}
		if _, dup := s.transactions[id]; dup {
			continue
		}
		s.transactions[id] = entityFrom(props, "Transaction", linkEmployeeID, linkMerchant)
		if emp := keyOf(props, linkEmployeeID); emp != "" {
			s.txEmployee[id] = emp
			s.employeeTxs[emp] = append(s.employeeTxs[emp], id)
		}
		if m := keyOf(props, linkMerchant); m != "" {
			s.txMerchant[id] = m
		}
	}
	for i, props := range f.Employees {
		id := keyOf(props, ports.PropID)
		if id == "" {
			return nil, fmt.Errorf("employee #%d has no %s", i, ports.PropID)
		}
		s.employees[id] = entityFrom(props, "Employee")
	}
	for i, props := range f.Merchants {
		name := keyOf(props, ports.PropName)
		if name == "" {
			return nil, fmt.Errorf("merchant #%d has no %s", i, ports.PropName)
		}
		s.merchants[name] = entityFrom(props, "Merchant", linkMCC)
		if code := keyOf(props, linkMCC); code != "" {
			s.merchantMCC[name] = code
		}
	}
	for i, props := range f.MCCs {
		code := keyOf(props, ports.PropCode)
		if code == "" {
			return nil, fmt.Errorf("mcc #%d has no %s", i, ports.PropCode)
		}
		s.mccs[code] = entityFrom(props, "MCC")
	}
	return s, nil
}

func (s *snapshot) transaction(id string) *ports.Entity {
	if id == "" {
		return nil
	}
	return s.transactions[id]
}

func (s *snapshot) employeeOf(txID string) *ports.Entity {
	return s.employees[s.txEmployee[txID]]
}

func (s *snapshot) merchantOf(txID string) *ports.Entity {
	return s.merchants[s.txMerchant[txID]]
}

func (s *snapshot) mccOf(merchantName string) *ports.Entity {
	return s.mccs[s.merchantMCC[merchantName]]
}
