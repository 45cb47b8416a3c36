package neo4j

// Graph schema: (:Case)-[:INVOLVES_TRANSACTION]->(:Transaction),
// (:Employee)-[:MADE_TRANSACTION]->(:Transaction),
// (:Transaction)-[:AT_MERCHANT]->(:Merchant)-[:HAS_MCC]->(:MCC).

// caseNetworkQuery returns at most one row. The transaction and everything
// beyond it are optional hops.
const caseNetworkQuery = `
MATCH (c:Case {case_id: $caseId})
WITH c ORDER BY elementId(c) LIMIT 1
OPTIONAL MATCH (c)-[:INVOLVES_TRANSACTION]->(t:Transaction)
WITH c, t ORDER BY elementId(t) LIMIT 1
OPTIONAL MATCH (e:Employee)-[:MADE_TRANSACTION]->(t)
WITH c, t, e LIMIT 1
OPTIONAL MATCH (t)-[:AT_MERCHANT]->(m:Merchant)
WITH c, t, e, m LIMIT 1
OPTIONAL MATCH (m)-[:HAS_MCC]->(mcc:MCC)
RETURN c, t, e, m, mcc
LIMIT 1
`

// relatedCandidatesQuery narrows candidates by the stored timestamp. The
// scorer applies the exact window again on the returned rows.
const relatedCandidatesQuery = `
MATCH (e:Employee {id: $employeeId})-[:MADE_TRANSACTION]->(t:Transaction)
WHERE t.id <> $excludeId
  AND t.transacted_at IS NOT NULL
  AND datetime(t.transacted_at) >= datetime($from)
  AND datetime(t.transacted_at) <= datetime($to)
OPTIONAL MATCH (t)-[:AT_MERCHANT]->(m:Merchant)
RETURN t, head(collect(m)) AS m
`

const employeeNetworkQuery = `
MATCH (e:Employee {id: $employeeId})
WITH e LIMIT 1
OPTIONAL MATCH (e)-[:MADE_TRANSACTION]->(t:Transaction)
WITH e, t ORDER BY t.transacted_at DESC
WITH e, collect(t)[..$limit] AS txs
UNWIND (CASE WHEN size(txs) = 0 THEN [null] ELSE txs END) AS t
OPTIONAL MATCH (t)-[:AT_MERCHANT]->(m:Merchant)
OPTIONAL MATCH (m)-[:HAS_MCC]->(mcc:MCC)
OPTIONAL MATCH (c:Case)-[:INVOLVES_TRANSACTION]->(t)
RETURN e, t, head(collect(DISTINCT m)) AS m, head(collect(DISTINCT mcc)) AS mcc, collect(DISTINCT c) AS cases
ORDER BY t.transacted_at DESC
`

const pingQuery = `RETURN 1`
