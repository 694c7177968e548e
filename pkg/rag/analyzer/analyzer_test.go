package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

// fakeLLM returns canned output for classification and expansion prompts.
type fakeLLM struct {
	classifyReply string
	classifyErr   error
	expandReply   string
	expandErr     error
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	if strings.HasPrefix(prompt, "Classify") {
		return f.classifyReply, f.classifyErr
	}
	return f.expandReply, f.expandErr
}

func TestAnalyzeClassification(t *testing.T) {
	tests := []struct {
		name         string
		reply        string
		err          error
		wantType     QueryType
		wantStrategy Strategy
		wantAgent    AgentType
	}{
		{"conversational", "CONVERSATIONAL", nil, QueryTypeConversational, StrategyMemoryFirst, AgentConversational},
		{"analytical", "ANALYTICAL", nil, QueryTypeAnalytical, StrategyMultiAgent, AgentAnalytical},
		{"multimodal", "MULTIMODAL", nil, QueryTypeMultimodal, StrategyHybrid, AgentMultimodal},
		{"factual", "FACTUAL", nil, QueryTypeFactual, StrategyHybrid, AgentFactual},
		{"lowercase label", "conversational", nil, QueryTypeConversational, StrategyMemoryFirst, AgentConversational},
		{"padded label", "  Factual.\n", nil, QueryTypeFactual, StrategyHybrid, AgentFactual},
		{"unknown label defaults to factual", "PHILOSOPHICAL", nil, QueryTypeFactual, StrategyHybrid, AgentFactual},
		{"call failure defaults to factual", "", errors.New("model offline"), QueryTypeFactual, StrategyHybrid, AgentFactual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(&fakeLLM{classifyReply: tt.reply, classifyErr: tt.err}, logger.NewNopLogger())

			processed := a.Analyze(context.Background(), "what is Go?")

			assert.Equal(t, tt.wantType, processed.QueryType)
			assert.Equal(t, tt.wantStrategy, processed.Strategy)
			assert.Equal(t, tt.wantAgent, processed.AgentType)
		})
	}
}

func TestExpandOriginalAlwaysFirst(t *testing.T) {
	a := NewAnalyzer(&fakeLLM{
		classifyReply: "FACTUAL",
		expandReply:   "what is golang\nexplain the go language\n",
	}, logger.NewNopLogger())

	processed := a.Analyze(context.Background(), "what is Go?")

	assert.Equal(t, "what is Go?", processed.ExpandedQueries[0])
	assert.Equal(t, []string{"what is Go?", "what is golang", "explain the go language"}, processed.ExpandedQueries)
}

func TestExpandCappedAtFourEntries(t *testing.T) {
	a := NewAnalyzer(&fakeLLM{
		classifyReply: "FACTUAL",
		expandReply:   "v1\nv2\nv3\nv4\nv5",
	}, logger.NewNopLogger())

	processed := a.Analyze(context.Background(), "original")

	assert.Len(t, processed.ExpandedQueries, 4)
	assert.Equal(t, "original", processed.ExpandedQueries[0])
}

func TestExpandFailureKeepsOriginalOnly(t *testing.T) {
	a := NewAnalyzer(&fakeLLM{
		classifyReply: "FACTUAL",
		expandErr:     errors.New("model offline"),
	}, logger.NewNopLogger())

	processed := a.Analyze(context.Background(), "original")

	assert.Equal(t, []string{"original"}, processed.ExpandedQueries)
}

func TestExpandSkipsDuplicatesOfOriginal(t *testing.T) {
	a := NewAnalyzer(&fakeLLM{
		classifyReply: "FACTUAL",
		expandReply:   "ORIGINAL\n\nvariant",
	}, logger.NewNopLogger())

	processed := a.Analyze(context.Background(), "original")

	assert.Equal(t, []string{"original", "variant"}, processed.ExpandedQueries)
}
