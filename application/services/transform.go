package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"casegraph/application/ports"
	"casegraph/domain/casenet"
	"casegraph/domain/core/valueobjects"
	"casegraph/pkg/utils"
)

// Metadata keys emitted on vertices
const (
	MetaCaseType        = "caseType"
	MetaStatus          = "status"
	MetaDescription     = "description"
	MetaSeverity        = "severity"
	MetaDetectionReason = "detectionReason"

	MetaTransactedAt    = "transactedAt"
	MetaCategory        = "category"
	MetaSimilarityScore = "similarityScore"
	MetaHoursDiff       = "hoursDiff"
	MetaAmountDiffPct   = "amountDiffPct"

	MetaEmail    = "email"
	MetaJobTitle = "jobTitle"

	MetaAddress        = "address"
	MetaCity           = "city"
	MetaCountry        = "country"
	MetaMCCCode        = "mccCode"
	MetaMCCDescription = "mccDescription"
	MetaMCCRiskGroup   = "mccRiskGroup"
)

// TransformReport lists the sub-entities a transform left out because their
// records were unusable. It never affects the returned graph.
type TransformReport struct {
	Skipped []string
}

func (r *TransformReport) skip(format string, args ...any) {
	r.Skipped = append(r.Skipped, fmt.Sprintf(format, args...))
}

// TransformCaseNetwork converts a case traversal into GraphData. It performs
// no I/O and returns the same graph for the same input.
func TransformCaseNetwork(raw *ports.RawCaseNetwork) casenet.GraphData {
	graph, _ := TransformCaseNetworkWithReport(raw)
	return graph
}

// TransformCaseNetworkWithReport is TransformCaseNetwork plus the list of
// malformed sub-entities that were omitted.
func TransformCaseNetworkWithReport(raw *ports.RawCaseNetwork) (casenet.GraphData, TransformReport) {
	b := newGraphBuilder()
	if raw.IsEmpty() {
		return casenet.EmptyGraph(), b.report
	}

	caseID := b.addCase(raw.Case)
	txID := b.addTransaction(raw.Transaction, nil)
	b.link(caseID, txID, casenet.LinkInvolvesTransaction, casenet.EmphasisPrimary)

	employeeID := b.addEmployee(raw.Employee)
	b.link(employeeID, txID, casenet.LinkMadeTransaction, casenet.EmphasisPrimary)

	merchantID := b.addMerchant(raw.Merchant, raw.MCC, casenet.EmphasisPrimary)
	b.link(txID, merchantID, casenet.LinkAtMerchant, casenet.EmphasisPrimary)

	// Related transactions hang off the employee; without one there is
	// nothing to attach them to.
	if employeeID != "" {
		for i := range raw.Related {
			rel := raw.Related[i]
			if rel.Transaction == nil {
				continue
			}
			relID := b.addTransaction(rel.Transaction, &rel)
			if relID == "" {
				continue
			}
			b.link(employeeID, relID, casenet.LinkMadeTransaction, casenet.EmphasisRelated)

			relMerchantID := b.addMerchant(rel.Merchant, nil, casenet.EmphasisRelated)
			b.link(relID, relMerchantID, casenet.LinkAtMerchant, casenet.EmphasisRelated)
		}
	}

	return b.build(), b.report
}

// TransformEmployeeNetwork converts an employee traversal into GraphData
// using the same vertex rules as the case network.
func TransformEmployeeNetwork(raw *ports.RawEmployeeNetwork) casenet.GraphData {
	graph, _ := TransformEmployeeNetworkWithReport(raw)
	return graph
}

// TransformEmployeeNetworkWithReport is TransformEmployeeNetwork plus the list
// of malformed sub-entities that were omitted.
func TransformEmployeeNetworkWithReport(raw *ports.RawEmployeeNetwork) (casenet.GraphData, TransformReport) {
	b := newGraphBuilder()
	if raw == nil || (raw.Employee == nil && len(raw.Transactions) == 0) {
		return casenet.EmptyGraph(), b.report
	}

	employeeID := b.addEmployee(raw.Employee)
	for _, et := range raw.Transactions {
		if et.Transaction == nil {
			continue
		}
		txID := b.addTransaction(et.Transaction, nil)
		if txID == "" {
			continue
		}
		b.link(employeeID, txID, casenet.LinkMadeTransaction, casenet.EmphasisPrimary)

		merchantID := b.addMerchant(et.Merchant, et.MCC, casenet.EmphasisPrimary)
		b.link(txID, merchantID, casenet.LinkAtMerchant, casenet.EmphasisPrimary)

		for _, c := range et.Cases {
			caseID := b.addCase(c)
			b.link(caseID, txID, casenet.LinkInvolvesTransaction, casenet.EmphasisPrimary)
		}
	}

	return b.build(), b.report
}

type linkKey struct {
	source string
	target string
	kind   casenet.LinkType
}

// graphBuilder accumulates vertices and relationships in insertion order,
// dropping duplicates by id and by (source, target, type).
type graphBuilder struct {
	nodes   []casenet.GraphNode
	links   []casenet.GraphEdge
	nodeIDs map[string]struct{}
	linkIDs map[linkKey]struct{}
	report  TransformReport
}

func newGraphBuilder() *graphBuilder {
	return &graphBuilder{
		nodes:   []casenet.GraphNode{},
		links:   []casenet.GraphEdge{},
		nodeIDs: make(map[string]struct{}),
		linkIDs: make(map[linkKey]struct{}),
	}
}

func (b *graphBuilder) has(id string) bool {
	_, ok := b.nodeIDs[id]
	return ok
}

func (b *graphBuilder) add(n casenet.GraphNode) {
	b.nodeIDs[n.ID] = struct{}{}
	b.nodes = append(b.nodes, n)
}

// link adds a relationship when both endpoints exist. An empty id means the
// endpoint was absent or skipped.
func (b *graphBuilder) link(source, target string, kind casenet.LinkType, emphasis casenet.Emphasis) {
	if source == "" || target == "" || !b.has(source) || !b.has(target) {
		return
	}
	key := linkKey{source: source, target: target, kind: kind}
	if _, ok := b.linkIDs[key]; ok {
		return
	}
	b.linkIDs[key] = struct{}{}
	b.links = append(b.links, casenet.GraphEdge{
		Source:   source,
		Target:   target,
		Type:     kind,
		Color:    casenet.LinkColor(kind),
		Width:    casenet.LinkWidth(emphasis),
		Metadata: casenet.Metadata{},
	})
}

func (b *graphBuilder) build() casenet.GraphData {
	return casenet.GraphData{
		Nodes: b.nodes,
		Links: b.links,
		Stats: casenet.ComputeStats(b.nodes, b.links),
	}
}

func nodeID(kind casenet.NodeType, key string) string {
	id, err := valueobjects.NewNodeID(string(kind), key)
	if err != nil {
		return ""
	}
	return id.String()
}

func (b *graphBuilder) addCase(e *ports.Entity) string {
	if e == nil {
		return ""
	}
	key := e.StringProp(ports.PropCaseID)
	id := nodeID(casenet.NodeCase, key)
	if id == "" {
		b.report.skip("case without %s", ports.PropCaseID)
		return ""
	}
	if b.has(id) {
		return id
	}

	md := casenet.Metadata{}
	md.Set(MetaCaseType, e.Prop(ports.PropCaseType))
	md.Set(MetaStatus, e.Prop(ports.PropStatus))
	md.Set(MetaDescription, e.Prop(ports.PropDescription))
	md.Set(MetaSeverity, e.Prop(ports.PropSeverity))
	if reason, ok := detectionReason(e.Prop(ports.PropDetectionReasoning)); ok {
		md.Set(MetaDetectionReason, reason)
	}

	b.add(casenet.GraphNode{
		ID:       id,
		Label:    key,
		Type:     casenet.NodeCase,
		Severity: e.StringProp(ports.PropSeverity),
		Color:    casenet.CaseColor,
		Size:     casenet.CaseNodeSize,
		Metadata: md,
	})
	return id
}

// addTransaction adds a primary transaction, or a related one when rel is
// set. The amount falls back to zero for display when it cannot be coerced.
func (b *graphBuilder) addTransaction(e *ports.Entity, rel *ports.RelatedTransaction) string {
	if e == nil {
		return ""
	}
	key := e.StringProp(ports.PropID)
	id := nodeID(casenet.NodeTransaction, key)
	if id == "" {
		b.report.skip("transaction without %s", ports.PropID)
		return ""
	}
	if b.has(id) {
		return id
	}

	amount := valueobjects.ToFloatOrZero(e.Prop(ports.PropAmount))
	risk := casenet.RiskFromAmount(amount)

	md := casenet.Metadata{}
	md.Set(MetaTransactedAt, transactedAt(e.Prop(ports.PropTransactedAt)))
	md.Set(MetaCategory, e.Prop(ports.PropCategory))
	if rel != nil {
		md.Set(MetaSimilarityScore, rel.Score)
		md.Set(MetaHoursDiff, rel.HoursDiff)
		md.Set(MetaAmountDiffPct, rel.AmountDiffPct)
	}

	b.add(casenet.GraphNode{
		ID:       id,
		Label:    casenet.FormatAmount(amount),
		Type:     casenet.NodeTransaction,
		Amount:   &amount,
		Color:    casenet.NodeColor(casenet.NodeTransaction, risk),
		Size:     casenet.TransactionSize(amount),
		Metadata: md,
	})
	return id
}

func (b *graphBuilder) addEmployee(e *ports.Entity) string {
	if e == nil {
		return ""
	}
	key := e.StringProp(ports.PropID)
	id := nodeID(casenet.NodeEmployee, key)
	if id == "" {
		b.report.skip("employee without %s", ports.PropID)
		return ""
	}
	if b.has(id) {
		return id
	}

	label := e.StringProp(ports.PropName)
	if label == "" {
		label = key
	}

	md := casenet.Metadata{}
	md.Set(MetaEmail, e.Prop(ports.PropEmail))
	md.Set(MetaJobTitle, e.Prop(ports.PropJobTitle))

	b.add(casenet.GraphNode{
		ID:         id,
		Label:      label,
		Type:       casenet.NodeEmployee,
		Department: e.StringProp(ports.PropDepartment),
		Color:      casenet.NodeColor(casenet.NodeEmployee, casenet.RiskMedium),
		Size:       casenet.EmployeeNodeSize,
		Metadata:   md,
	})
	return id
}

// addMerchant adds a merchant keyed by display name. Two merchants sharing a
// name collapse into the first one added.
func (b *graphBuilder) addMerchant(e, mcc *ports.Entity, emphasis casenet.Emphasis) string {
	if e == nil {
		return ""
	}
	name := e.StringProp(ports.PropName)
	id := nodeID(casenet.NodeMerchant, name)
	if id == "" {
		b.report.skip("merchant without %s", ports.PropName)
		return ""
	}
	if b.has(id) {
		return id
	}

	md := casenet.Metadata{}
	md.Set(MetaAddress, e.Prop(ports.PropAddress))
	md.Set(MetaCity, e.Prop(ports.PropCity))

	node := casenet.GraphNode{
		ID:       id,
		Label:    name,
		Type:     casenet.NodeMerchant,
		Color:    casenet.NodeColor(casenet.NodeMerchant, casenet.RiskLow),
		Size:     casenet.RelatedMerchantNodeSize,
		Metadata: md,
	}
	if emphasis == casenet.EmphasisPrimary {
		node.Color = casenet.NodeColor(casenet.NodeMerchant, casenet.RiskMedium)
		node.Size = casenet.MerchantNodeSize
		md.Set(MetaCountry, e.Prop(ports.PropCountry))
		md.Set(MetaMCCCode, mcc.Prop(ports.PropCode))
		md.Set(MetaMCCDescription, mcc.Prop(ports.PropDescription))
		md.Set(MetaMCCRiskGroup, mcc.Prop(ports.PropRiskGroup))
	}

	b.add(node)
	return id
}

// transactedAt normalises a timestamp to RFC 3339 when it parses and passes
// the raw value through otherwise.
func transactedAt(v any) any {
	if ts, ok := utils.ParseTimestamp(v); ok {
		return ts.UTC().Format(time.RFC3339)
	}
	return v
}

// detectionReason extracts the "reason" string from the opaque detection
// reasoning, which may arrive as a decoded map or as a JSON document. A plain
// non-JSON string is taken as the reason itself.
func detectionReason(v any) (string, bool) {
	switch t := v.(type) {
	case map[string]any:
		reason, ok := t["reason"].(string)
		reason = strings.TrimSpace(reason)
		return reason, ok && reason != ""
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return "", false
		}
		var doc map[string]any
		if err := json.Unmarshal([]byte(s), &doc); err != nil {
			return s, true
		}
		return detectionReason(doc)
	}
	return "", false
}
