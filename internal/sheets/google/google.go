// Package google exports month summaries to a Google Sheets spreadsheet.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"julius/internal/core"
	ports "julius/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base sheet name without year (e.g. "Summaries"); rows land on the
	// year-prefixed sheet for the exported period.
	summariesBase string
}

// Ensure interface conformance
var _ ports.SummaryWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME (default "Summaries").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	summariesBase := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if summariesBase == "" {
		summariesBase = "Summaries"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		summariesBase: summariesBase,
	}, nil
}

// newSheetsService initializes a Sheets Service. Service Account credentials
// (GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS) take precedence; an OAuth client plus a
// token minted by julius-oauth-init works as a personal-account fallback.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return newOAuthSheetsService(ctx)
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// newOAuthSheetsService builds the service from an OAuth client config and a
// stored user token (see cmd/julius-oauth-init).
func newOAuthSheetsService(ctx context.Context) (*gsheet.Service, error) {
	clientJSON, err := readEnvPair("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil {
		return nil, err
	}
	if clientJSON == nil {
		return nil, errors.New("missing Google credentials (set GOOGLE_SERVICE_ACCOUNT_JSON/FILE or GOOGLE_OAUTH_CLIENT_JSON/FILE)")
	}

	tokenJSON, err := readEnvPair("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil {
		return nil, err
	}
	if tokenJSON == nil {
		return nil, errors.New("missing OAuth token (run julius-oauth-init and set GOOGLE_OAUTH_TOKEN_JSON/FILE)")
	}

	cfg, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client config: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	service, err := gsheet.NewService(ctx, goption.WithHTTPClient(cfg.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// readEnvPair returns the inline JSON env value, or the referenced file's
// contents, or nil when neither is set.
func readEnvPair(jsonKey, fileKey string) ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(jsonKey)); v != "" {
		return []byte(v), nil
	}
	if path := strings.TrimSpace(os.Getenv(fileKey)); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fileKey, err)
		}
		return data, nil
	}
	return nil, nil
}

// WriteMonthSummary appends one summary snapshot: a totals row followed by a
// row per expense category.
func (c *Client) WriteMonthSummary(ctx context.Context, userID string, summary core.HomeSummary) error {
	sheetName := yearPrefixedName(c.summariesBase, summary.Year)

	rows := [][]interface{}{
		{
			time.Now().UTC().Format(time.RFC3339),
			userID,
			summary.Year,
			summary.Month,
			summary.TotalIncomes.Reais(),
			summary.TotalExpenses.Reais(),
			summary.Balance.Reais(),
			summary.PreviousMonthExpenses.Reais(),
		},
	}
	for _, cat := range summary.ExpensesByCategory {
		rows = append(rows, []interface{}{
			"", userID, summary.Year, summary.Month,
			cat.CategoryName,
			cat.Total.Reais(),
			cat.Percentage,
			cat.Count,
		})
	}

	valueRange := &gsheet.ValueRange{Values: rows}
	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, sheetName+"!A:H", valueRange).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append summary rows: %w", err)
	}

	slog.InfoContext(ctx, "Month summary exported",
		"user_id", userID,
		"year", summary.Year,
		"month", summary.Month,
		"sheet", sheetName,
		"rows", len(rows))

	return nil
}

// yearPrefixedName builds "<year> <base>" unless base already carries the
// year (either literal or as a %d pattern).
func yearPrefixedName(base string, year int) string {
	yearStr := fmt.Sprintf("%d", year)
	if strings.Contains(base, "%d") {
		return fmt.Sprintf(base, year)
	}
	if strings.HasPrefix(base, yearStr) {
		return base
	}
	return yearStr + " " + base
}
