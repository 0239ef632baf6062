// Package reporter notifies the commerce platform about payment outcomes
// through its transactionEventReport GraphQL mutation.
package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"paysera-app/internal/logger"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"go.uber.org/zap"
)

type EventType string

const (
	ChargeSuccess        EventType = "CHARGE_SUCCESS"
	ChargeFailure        EventType = "CHARGE_FAILURE"
	ChargeRequest        EventType = "CHARGE_REQUEST"
	ChargeActionRequired EventType = "CHARGE_ACTION_REQUIRED"
)

const operationName = "TransactionEventReport"

const reportMutation = `
mutation TransactionEventReport(
  $id: ID!
  $type: TransactionEventTypeEnum!
  $amount: PositiveDecimal!
  $pspReference: String!
  $message: String
) {
  transactionEventReport(
    id: $id
    type: $type
    amount: $amount
    pspReference: $pspReference
    message: $message
  ) {
    alreadyProcessed
    errors {
      field
      message
      code
    }
  }
}
`

var ErrReportRejected = errors.New("transaction event rejected by platform")

type Event struct {
	TransactionID string
	Type          EventType
	Amount        float64 // major units
	PspReference  string
	Message       string
}

// Reporter delivers one transaction event to the platform.
type Reporter interface {
	Report(ctx context.Context, ev Event) error
}

type Client struct {
	endpoint   string
	token      string
	variables  ast.VariableDefinitionList
	httpClient *http.Client
}

// NewClient parses the mutation document once and keeps its variable
// definitions; Report builds every request from them.
func NewClient(endpoint, appToken string) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("platform api url is empty")
	}
	vars, err := operationVariables(reportMutation)
	if err != nil {
		return nil, err
	}

	return &Client{
		endpoint:  endpoint,
		token:     appToken,
		variables: vars,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

// eventVariables is every value an Event can bind to a mutation variable.
func eventVariables(ev Event) map[string]any {
	return map[string]any{
		"id":           ev.TransactionID,
		"type":         ev.Type,
		"amount":       ev.Amount,
		"pspReference": ev.PspReference,
		"message":      ev.Message,
	}
}

// operationVariables parses doc and returns the variables of its
// TransactionEventReport mutation. Every variable must be bindable from an
// Event.
func operationVariables(doc string) (ast.VariableDefinitionList, error) {
	parsed, gqlErr := parser.ParseQuery(&ast.Source{Name: operationName, Input: doc})
	if gqlErr != nil {
		return nil, fmt.Errorf("parse %s: %v", operationName, gqlErr)
	}
	op := parsed.Operations.ForName(operationName)
	if op == nil || op.Operation != ast.Mutation {
		return nil, fmt.Errorf("document has no %s mutation", operationName)
	}

	known := eventVariables(Event{})
	for _, def := range op.VariableDefinitions {
		if _, ok := known[def.Variable]; !ok {
			return nil, fmt.Errorf("%s declares unbound variable $%s", operationName, def.Variable)
		}
	}
	return op.VariableDefinitions, nil
}

// buildVariables fills the declared variables from ev. Zero values are
// omitted; a non-null variable left empty is an error.
func (c *Client) buildVariables(ev Event) (map[string]any, error) {
	values := eventVariables(ev)
	out := make(map[string]any, len(c.variables))
	for _, def := range c.variables {
		v := values[def.Variable]
		if isZero(v) {
			if def.Type != nil && def.Type.NonNull {
				return nil, fmt.Errorf("missing required variable $%s", def.Variable)
			}
			continue
		}
		out[def.Variable] = v
	}
	return out, nil
}

func isZero(v any) bool {
	switch x := v.(type) {
	case string:
		return x == ""
	case EventType:
		return x == ""
	case float64:
		return x == 0
	default:
		return v == nil
	}
}

type graphQLRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type reportResponse struct {
	Data struct {
		TransactionEventReport *struct {
			AlreadyProcessed bool `json:"alreadyProcessed"`
			Errors           []struct {
				Field   *string `json:"field"`
				Message string  `json:"message"`
				Code    string  `json:"code"`
			} `json:"errors"`
		} `json:"transactionEventReport"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

func (c *Client) Report(ctx context.Context, ev Event) error {
	log := logger.FromCtx(ctx).With(
		zap.String("transaction_id", ev.TransactionID),
		zap.String("type", string(ev.Type)),
		zap.String("psp_reference", ev.PspReference),
	)

	vars, err := c.buildVariables(ev)
	if err != nil {
		return err
	}

	body, err := json.Marshal(graphQLRequest{
		OperationName: operationName,
		Query:         reportMutation,
		Variables:     vars,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("platform request failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read platform response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error("platform returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", respBody),
		)
		return fmt.Errorf("platform error: status %d", resp.StatusCode)
	}

	var out reportResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return fmt.Errorf("decode platform response: %w", err)
	}

	if len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("%w: %s", ErrReportRejected, strings.Join(msgs, "; "))
	}

	result := out.Data.TransactionEventReport
	if result == nil {
		return fmt.Errorf("%w: empty result", ErrReportRejected)
	}
	if len(result.Errors) > 0 {
		e := result.Errors[0]
		return fmt.Errorf("%w: %s (%s)", ErrReportRejected, e.Message, e.Code)
	}

	if result.AlreadyProcessed {
		log.Info("transaction event already processed")
	} else {
		log.Info("transaction event reported")
	}
	return nil
}
