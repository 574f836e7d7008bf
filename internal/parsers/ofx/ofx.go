// Package ofx provides OFX/QFX statement parsing for findash
package ofx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/rumor-ml/commons.systems/findash/internal/domain"
	"github.com/rumor-ml/commons.systems/findash/internal/parser"
)

// dateLayout matches the day-first form used by spreadsheet exports.
const dateLayout = "02.01.2006"

// statementColumns are the fields an OFX statement can fill. OFX carries no
// category or cashback, so those columns stay absent.
var statementColumns = []domain.Column{
	domain.ColumnOperationDate,
	domain.ColumnPaymentDate,
	domain.ColumnCardNumber,
	domain.ColumnAmount,
	domain.ColumnDescription,
}

// Parser implements OFX/QFX parsing with a stateless design.
// It is safe for concurrent use.
type Parser struct{}

var parserInstance = &Parser{}

// NewParser returns the shared OFX parser instance.
func NewParser() *Parser {
	return parserInstance
}

// Name returns the parser identifier
func (p *Parser) Name() string {
	return "ofx"
}

// CanParse checks if this parser can handle the file based on extension and header
func (p *Parser) CanParse(path string, header []byte) bool {
	// Check file extension (.ofx or .qfx, case-insensitive)
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".ofx" && ext != ".qfx" {
		return false
	}

	// Look for OFX header markers (both v1 SGML and v2 XML formats)
	headerUpper := strings.ToUpper(string(header))
	return strings.Contains(headerUpper, "OFXHEADER") ||
		strings.Contains(headerUpper, "<?OFX") ||
		strings.Contains(headerUpper, "<OFX>")
}

// Parse converts every statement in an OFX/QFX file into dataset rows.
// The statement's account ID fills the card number column.
func (p *Parser) Parse(ctx context.Context, r io.Reader, meta *parser.Metadata) (*domain.Dataset, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX content%s: %w", parser.Source(meta), err)
	}

	// ofxgo.ParseResponse does not take a context.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	response, err := ofxgo.ParseResponse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file%s (%d bytes): %w", parser.Source(meta), len(content), err)
	}

	var rows []domain.Transaction
	for _, msg := range response.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			return nil, fmt.Errorf("failed to type assert credit card statement: expected *ofxgo.CCStatementResponse, got %T", msg)
		}
		if stmt.BankTranList == nil {
			return nil, fmt.Errorf("missing transaction list in credit card statement%s", parser.Source(meta))
		}
		txns, err := convertTransactions(stmt.CCAcctFrom.AcctID.String(), stmt.BankTranList.Transactions)
		if err != nil {
			return nil, fmt.Errorf("failed to parse credit card statement%s: %w", parser.Source(meta), err)
		}
		rows = append(rows, txns...)
	}

	for _, msg := range response.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			return nil, fmt.Errorf("failed to type assert bank statement: expected *ofxgo.StatementResponse, got %T", msg)
		}
		if stmt.BankTranList == nil {
			return nil, fmt.Errorf("missing transaction list in bank statement%s", parser.Source(meta))
		}
		txns, err := convertTransactions(stmt.BankAcctFrom.AcctID.String(), stmt.BankTranList.Transactions)
		if err != nil {
			return nil, fmt.Errorf("failed to parse bank statement%s: %w", parser.Source(meta), err)
		}
		rows = append(rows, txns...)
	}

	// Only cash movements of investment accounts are ledger rows; security
	// trades carry no card spend.
	for _, msg := range response.InvStmt {
		stmt, ok := msg.(*ofxgo.InvStatementResponse)
		if !ok {
			return nil, fmt.Errorf("failed to type assert investment statement: expected *ofxgo.InvStatementResponse, got %T", msg)
		}
		if stmt.InvTranList == nil {
			return nil, fmt.Errorf("missing transaction list in investment statement%s", parser.Source(meta))
		}
		for _, bankTxns := range stmt.InvTranList.BankTransactions {
			txns, err := convertTransactions(stmt.InvAcctFrom.AcctID.String(), bankTxns.Transactions)
			if err != nil {
				return nil, fmt.Errorf("failed to parse investment statement%s: %w", parser.Source(meta), err)
			}
			rows = append(rows, txns...)
		}
	}

	if len(response.CreditCard)+len(response.Bank)+len(response.InvStmt) == 0 {
		return nil, fmt.Errorf("no supported statement type found in OFX file%s. Expected at least one of: credit card (CREDITCARDMSGSRSV1), bank (BANKMSGSRSV1), or investment (INVSTMTMSGSRSV1) statement", parser.Source(meta))
	}

	return domain.NewDataset(statementColumns, rows), nil
}

// convertTransactions maps OFX transactions of one account to dataset rows
func convertTransactions(accountID string, txns []ofxgo.Transaction) ([]domain.Transaction, error) {
	rows := make([]domain.Transaction, 0, len(txns))
	for i, txn := range txns {
		row, err := extractTransaction(accountID, txn)
		if err != nil {
			return nil, fmt.Errorf("failed to parse transaction at index %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// extractTransaction extracts common transaction fields from OFX transaction
func extractTransaction(accountID string, txn ofxgo.Transaction) (domain.Transaction, error) {
	id := txn.FiTID.String()

	// Payment date is the posted date; if not available, fallback to user date
	posted := txn.DtPosted.Time
	var user time.Time
	if txn.DtUser != nil {
		user = txn.DtUser.Time
	}
	if posted.IsZero() {
		posted = user
	}
	if posted.IsZero() {
		return domain.Transaction{}, fmt.Errorf("transaction %s missing both posted date and user date", id)
	}
	if user.IsZero() {
		user = posted
	}

	amount, err := decimal.NewFromString(txn.TrnAmt.Rat.FloatString(4))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %s has invalid amount: %w", id, err)
	}

	// Use Name field for description; if empty, fallback to Memo field
	description := txn.Name.String()
	if strings.TrimSpace(description) == "" {
		description = txn.Memo.String()
	}

	return domain.Transaction{
		OperationDate: domain.StringPtr(user.Format(dateLayout + " 15:04:05")),
		PaymentDate:   domain.StringPtr(posted.Format(dateLayout)),
		CardNumber:    parser.Text(accountID),
		Amount:        &amount,
		Description:   parser.Text(description),
	}, nil
}
