package neo4j

import (
	"fmt"
	"time"

	"casegraph/application/ports"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// toEntity converts a driver node into a port entity. A nil or non-node value
// is an absent hop and yields nil.
func toEntity(v any) *ports.Entity {
	var node neo4j.Node
	switch n := v.(type) {
	case neo4j.Node:
		node = n
	case *neo4j.Node:
		if n == nil {
			return nil
		}
		node = *n
	default:
		return nil
	}

	props := make(map[string]any, len(node.Props))
	for k, val := range node.Props {
		props[k] = normalizeValue(val)
	}
	return &ports.Entity{
		ElementID:  node.ElementId,
		Labels:     append([]string(nil), node.Labels...),
		Properties: props,
	}
}

// normalizeValue maps store-native temporal values onto time.Time so that
// records survive a JSON round trip through the cache. Zone-less temporals
// are read as UTC.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case dbtype.Date:
		return t.Time().UTC()
	case dbtype.LocalDateTime:
		lt := t.Time()
		return time.Date(lt.Year(), lt.Month(), lt.Day(), lt.Hour(), lt.Minute(), lt.Second(), lt.Nanosecond(), time.UTC)
	case dbtype.Duration:
		return t.String()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

func recordValue(record *neo4j.Record, key string) any {
	if record == nil {
		return nil
	}
	v, _ := record.Get(key)
	return v
}

func toCaseNetwork(record *neo4j.Record) *ports.RawCaseNetwork {
	return &ports.RawCaseNetwork{
		Case:        toEntity(recordValue(record, "c")),
		Transaction: toEntity(recordValue(record, "t")),
		Employee:    toEntity(recordValue(record, "e")),
		Merchant:    toEntity(recordValue(record, "m")),
		MCC:         toEntity(recordValue(record, "mcc")),
	}
}

func toCandidates(records []*neo4j.Record) []ports.RelatedCandidate {
	candidates := make([]ports.RelatedCandidate, 0, len(records))
	for _, record := range records {
		tx := toEntity(recordValue(record, "t"))
		if tx == nil {
			continue
		}
		candidates = append(candidates, ports.RelatedCandidate{
			Transaction: tx,
			Merchant:    toEntity(recordValue(record, "m")),
		})
	}
	return candidates
}

func toEmployeeNetwork(records []*neo4j.Record) (*ports.RawEmployeeNetwork, error) {
	if len(records) == 0 {
		return nil, nil
	}
	network := &ports.RawEmployeeNetwork{
		Employee: toEntity(recordValue(records[0], "e")),
	}
	if network.Employee == nil {
		return nil, fmt.Errorf("employee row without employee node")
	}

	for _, record := range records {
		tx := toEntity(recordValue(record, "t"))
		if tx == nil {
			continue
		}
		et := ports.EmployeeTransaction{
			Transaction: tx,
			Merchant:    toEntity(recordValue(record, "m")),
			MCC:         toEntity(recordValue(record, "mcc")),
		}
		if cases, ok := recordValue(record, "cases").([]any); ok {
			for _, c := range cases {
				if entity := toEntity(c); entity != nil {
					et.Cases = append(et.Cases, entity)
				}
			}
		}
		network.Transactions = append(network.Transactions, et)
	}
	return network, nil
}
