package sarif

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
)

const SchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json"
const Version = "2.1.0"

type Log struct {
	Schema  string `json:"$schema"`
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`
}

type Run struct {
	Tool        Tool                   `json:"tool"`
	Results     []Result               `json:"results"`
	Invocations []Invocation           `json:"invocations,omitempty"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
}

type Invocation struct {
	WorkingDirectory    ArtifactLocation `json:"workingDirectory"`
	ExecutionSuccessful bool             `json:"executionSuccessful"`
}

type Tool struct {
	Driver Driver `json:"driver"`
}

type Driver struct {
	Name           string                `json:"name"`
	Version        string                `json:"version,omitempty"`
	InformationURI string                `json:"informationUri,omitempty"`
	Rules          []ReportingDescriptor `json:"rules,omitempty"`
}

type ReportingDescriptor struct {
	ID               string                  `json:"id"`
	ShortDescription Message                 `json:"shortDescription,omitempty"`
	FullDescription  *Message                `json:"fullDescription,omitempty"`
	Help             *Message                `json:"help,omitempty"`
	HelpURI          string                  `json:"helpUri,omitempty"`
	Properties       map[string]interface{}  `json:"properties,omitempty"`
	DefaultConfig    *ReportingConfiguration `json:"defaultConfiguration,omitempty"`
}

type ReportingConfiguration struct {
	Level string `json:"level,omitempty"`
}

type Result struct {
	RuleID              string                 `json:"ruleId"`
	Level               string                 `json:"level"`
	Message             Message                `json:"message"`
	Locations           []Location             `json:"locations,omitempty"`
	PartialFingerprints map[string]string      `json:"partialFingerprints,omitempty"`
	Properties          map[string]interface{} `json:"properties,omitempty"`
}

type Message struct {
	Text string `json:"text"`
}

type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region,omitempty"`
}

type ArtifactLocation struct {
	URI string `json:"uri"`
}

type Region struct {
	StartLine int `json:"startLine,omitempty"`
	EndLine   int `json:"endLine,omitempty"`
}

// ReadFile loads a SARIF log previously written to disk, by `gate analyze`
// or another SARIF-producing scanner, for `gate review`.
func ReadFile(path string) (*Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading SARIF file: %w", err)
	}
	var log Log
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("parsing SARIF file: %w", err)
	}
	return &log, nil
}

func NewLog(toolName, toolVersion string) *Log {
	return &Log{
		Schema:  SchemaURI,
		Version: Version,
		Runs: []Run{{
			Tool: Tool{
				Driver: Driver{
					Name:    toolName,
					Version: toolVersion,
				},
			},
			Results: []Result{},
		}},
	}
}

// CacheMetadata identifies the pattern snapshot a SARIF log was produced
// against, so a host can tell whether a cached result is still valid
// after the Pattern Store republishes.
type CacheMetadata struct {
	FileHash      string
	PatternCount  int
	WeightsAsOf   string // RFC3339 timestamp of the newest weight update observed
}

// ComputeCacheKey derives a short content-addressable key from the
// metadata: same file, same pattern count, same weights snapshot time
// implies the same verdict.
func (c *CacheMetadata) ComputeCacheKey() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", c.FileHash, c.PatternCount, c.WeightsAsOf)))
	return hex.EncodeToString(sum[:])[:16]
}
