// Package ofx turns OFX/QFX bank and credit card statements into transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"

	"github.com/Veraticus/the-spice-must-sync/internal/model"
)

// importNamespace seeds the deterministic IDs of imported transactions, so
// importing the same statement twice overwrites instead of duplicating.
var importNamespace = uuid.MustParse("5b0a4f0e-7c1d-4a52-9a52-1d0b7d1f5e11")

var (
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagPattern  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	datePrefix      = regexp.MustCompile(`^\d{2}/\d{2} `)
)

var descriptionPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// Entry is one statement line.
type Entry struct {
	Posted      time.Time
	FITID       string
	AccountID   string
	Description string
	Type        string
	CheckNumber string
	Amount      float64
}

// Transaction converts the entry for userID under categoryID. The ID is
// derived from the account and FITID when the bank supplied one.
func (e Entry) Transaction(userID, categoryID string) model.Transaction {
	id := uuid.NewString()
	if e.FITID != "" {
		id = uuid.NewSHA1(importNamespace, []byte(e.AccountID+"|"+e.FITID)).String()
	}
	return model.Transaction{
		ID:          id,
		UserID:      userID,
		CategoryID:  categoryID,
		Amount:      e.Amount,
		Description: e.Description,
		Timestamp:   e.Posted,
	}
}

// Parser reads OFX/QFX statements.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser. A nil logger uses slog.Default.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// normalize repairs formatting that real-world bank exports get wrong.
func normalize(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagPattern.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	resp, err := ofxgo.ParseResponse(strings.NewReader(normalize(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// Parse returns every entry of the bank and credit card statements in the
// file. Amounts keep their sign: debits are negative.
func (p *Parser) Parse(_ context.Context, reader io.Reader) ([]Entry, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	statements := 0

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			statements++
			entries = appendEntries(entries, stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID))
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			statements++
			entries = appendEntries(entries, stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID))
		}
	}

	p.logger.Info("Parsed OFX file", "statements", statements, "entries", len(entries))
	return entries, nil
}

func appendEntries(entries []Entry, txns []ofxgo.Transaction, accountID string) []Entry {
	for _, tx := range txns {
		amount, _ := tx.TrnAmt.Float64()
		entries = append(entries, Entry{
			FITID:       string(tx.FiTID),
			AccountID:   accountID,
			Posted:      tx.DtPosted.Time,
			Amount:      amount,
			Description: describe(tx),
			Type:        tx.TrnType.String(),
			CheckNumber: string(tx.CheckNum),
		})
	}
	return entries
}

// describe picks the most readable merchant text of a statement line.
func describe(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && isGeneric(name) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range descriptionPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}
	return strings.TrimSpace(datePrefix.ReplaceAllString(name, ""))
}

func isGeneric(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	default:
		return false
	}
}

// Accounts returns the sorted account IDs the file has statements for.
func (p *Parser) Accounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var accounts []string
	add := func(id ofxgo.String) {
		if id != "" && !slices.Contains(accounts, string(id)) {
			accounts = append(accounts, string(id))
		}
	}
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(stmt.BankAcctFrom.AcctID)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(stmt.CCAcctFrom.AcctID)
		}
	}

	slices.Sort(accounts)
	return accounts, nil
}
