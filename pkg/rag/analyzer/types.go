package analyzer

// QueryType is the closed set of query categories the classifier can emit.
type QueryType string

const (
	QueryTypeFactual        QueryType = "FACTUAL"
	QueryTypeConversational QueryType = "CONVERSATIONAL"
	QueryTypeAnalytical     QueryType = "ANALYTICAL"
	QueryTypeMultimodal     QueryType = "MULTIMODAL"
)

// Strategy is the retrieval strategy the pipeline dispatches on.
type Strategy string

const (
	StrategyMemoryFirst Strategy = "MEMORY_FIRST"
	StrategyMultiAgent  Strategy = "MULTI_AGENT"
	StrategyHybrid      Strategy = "HYBRID"
)

// AgentType is the response-generation persona.
type AgentType string

const (
	AgentFactual        AgentType = "FACTUAL"
	AgentConversational AgentType = "CONVERSATIONAL"
	AgentAnalytical     AgentType = "ANALYTICAL"
	AgentMultimodal     AgentType = "MULTIMODAL"
)

// ProcessedQuery is the analyzer's output, consumed by the retriever and
// response generator. ExpandedQueries always starts with the original query
// and holds at most four entries.
type ProcessedQuery struct {
	Original        string
	ExpandedQueries []string
	QueryType       QueryType
	Strategy        Strategy
	AgentType       AgentType
	Metadata        map[string]interface{}
}

// routing maps each query category to its retrieval strategy and agent. The
// table is exhaustive over QueryType; unknown categories fall back to the
// FACTUAL row.
var routing = map[QueryType]struct {
	Strategy Strategy
	Agent    AgentType
}{
	QueryTypeConversational: {StrategyMemoryFirst, AgentConversational},
	QueryTypeAnalytical:     {StrategyMultiAgent, AgentAnalytical},
	QueryTypeMultimodal:     {StrategyHybrid, AgentMultimodal},
	QueryTypeFactual:        {StrategyHybrid, AgentFactual},
}

// Route returns the retrieval strategy and agent for a query category.
func Route(queryType QueryType) (Strategy, AgentType) {
	if route, ok := routing[queryType]; ok {
		return route.Strategy, route.Agent
	}
	route := routing[QueryTypeFactual]
	return route.Strategy, route.Agent
}

// ParseQueryType normalizes a raw classifier label to a known category and
// reports whether it matched.
func ParseQueryType(label string) (QueryType, bool) {
	switch QueryType(normalizeLabel(label)) {
	case QueryTypeFactual:
		return QueryTypeFactual, true
	case QueryTypeConversational:
		return QueryTypeConversational, true
	case QueryTypeAnalytical:
		return QueryTypeAnalytical, true
	case QueryTypeMultimodal:
		return QueryTypeMultimodal, true
	}
	return QueryTypeFactual, false
}
