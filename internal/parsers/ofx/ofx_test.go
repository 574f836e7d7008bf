package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rumor-ml/commons.systems/findash/internal/domain"
	"github.com/rumor-ml/commons.systems/findash/internal/parser"
	"github.com/shopspring/decimal"
)

const ofxHeader = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240101120000
<LANGUAGE>ENG
<FI>
<ORG>TESTBANK
<FID>12345
</FI>
</SONRS>
</SIGNONMSGSRSV1>
`

// ofxDocument wraps statement message sets in a complete SGML document
func ofxDocument(messages string) string {
	return ofxHeader + messages + "</OFX>"
}

const bankStatement = `<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>9876543210
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101000000
<DTEND>20240131235959
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240105120000
<DTUSER>20240103093000
<TRNAMT>-50.00
<FITID>TXN001
<NAME>Test Transaction 1
<MEMO>Coffee Shop
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240115120000
<TRNAMT>1000.00
<FITID>TXN002
<MEMO>Paycheck
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>2000.00
<DTASOF>20240131235959
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
`

const creditCardStatement = `<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101000000
<DTEND>20240131235959
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000
<TRNAMT>-25.99
<FITID>CC001
<NAME>Amazon Purchase
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131235959
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
`

const investmentStatement = `<INVSTMTMSGSRSV1>
<INVSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<INVSTMTRS>
<DTASOF>20240131235959
<CURDEF>USD
<INVACCTFROM>
<BROKERID>TESTBROKER
<ACCTID>987654321
</INVACCTFROM>
<INVTRANLIST>
<DTSTART>20240101000000
<DTEND>20240131235959
<INVBANKTRAN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240115120000
<TRNAMT>100.00
<FITID>INV001
<NAME>Dividend Payment
</STMTTRN>
</INVBANKTRAN>
</INVTRANLIST>
<INVBAL>
<AVAILCASH>5000.00
</INVBAL>
</INVSTMTRS>
</INVSTMTTRNRS>
</INVSTMTMSGSRSV1>
`

func newMeta(t *testing.T) *parser.Metadata {
	t.Helper()
	meta, err := parser.NewMetadata("/test/statement.ofx", time.Now())
	if err != nil {
		t.Fatalf("failed to create metadata: %v", err)
	}
	return meta
}

func TestName(t *testing.T) {
	p := NewParser()
	if got := p.Name(); got != "ofx" {
		t.Errorf("Name() = %q, want %q", got, "ofx")
	}
}

func TestCanParse(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		header   string
		expected bool
	}{
		{"OFX file with OFXHEADER marker", "test.ofx", "OFXHEADER:100\nDATA:OFXSGML\n", true},
		{"OFX file with XML header", "test.ofx", "<?xml version=\"1.0\"?><?OFX OFXHEADER=\"200\"?>\n", true},
		{"OFX file with OFX tag", "test.ofx", "<OFX><SIGNONMSGSRSV1>", true},
		{"QFX extension uppercase", "test.QFX", "OFXHEADER:100\n", true},
		{"OFX file without valid header", "test.ofx", "This is not OFX content", false},
		{"CSV file", "test.csv", "Date,Description,Amount\n", false},
		{"Wrong extension even with OFX content", "test.pdf", "OFXHEADER:100\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser()
			if got := p.CanParse(tt.path, []byte(tt.header)); got != tt.expected {
				t.Errorf("CanParse() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParse_BankStatement(t *testing.T) {
	p := NewParser()
	ds, err := p.Parse(context.Background(), strings.NewReader(ofxDocument(bankStatement)), newMeta(t))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if ds.Len() != 2 {
		t.Fatalf("got %d rows, want 2", ds.Len())
	}
	if ds.HasColumn(domain.ColumnCategory) || ds.HasColumn(domain.ColumnCashback) {
		t.Errorf("OFX rows must not claim category or cashback columns, got %v", ds.Columns())
	}

	first := ds.Row(0)
	if *first.PaymentDate != "05.01.2024" {
		t.Errorf("PaymentDate = %q, want %q", *first.PaymentDate, "05.01.2024")
	}
	if *first.OperationDate != "03.01.2024 09:30:00" {
		t.Errorf("OperationDate = %q, want %q", *first.OperationDate, "03.01.2024 09:30:00")
	}
	if *first.CardNumber != "9876543210" {
		t.Errorf("CardNumber = %q, want %q", *first.CardNumber, "9876543210")
	}
	if !first.Amount.Equal(decimal.RequireFromString("-50")) {
		t.Errorf("Amount = %s, want -50", first.Amount)
	}
	if *first.Description != "Test Transaction 1" {
		t.Errorf("Description = %q, want %q", *first.Description, "Test Transaction 1")
	}

	second := ds.Row(1)
	if *second.Description != "Paycheck" {
		t.Errorf("Description should fall back to memo, got %q", *second.Description)
	}
	if *second.OperationDate != "15.01.2024 12:00:00" {
		t.Errorf("OperationDate should fall back to posted date, got %q", *second.OperationDate)
	}
}

func TestParse_CreditCardAndInvestment(t *testing.T) {
	p := NewParser()
	doc := ofxDocument(creditCardStatement + investmentStatement)
	ds, err := p.Parse(context.Background(), strings.NewReader(doc), newMeta(t))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("got %d rows, want 2", ds.Len())
	}

	card := ds.Row(0)
	if *card.CardNumber != "4111111111111111" {
		t.Errorf("CardNumber = %q, want %q", *card.CardNumber, "4111111111111111")
	}
	if !card.Amount.Equal(decimal.RequireFromString("-25.99")) {
		t.Errorf("Amount = %s, want -25.99", card.Amount)
	}

	dividend := ds.Row(1)
	if *dividend.CardNumber != "987654321" {
		t.Errorf("CardNumber = %q, want %q", *dividend.CardNumber, "987654321")
	}
	if !dividend.Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Amount = %s, want 100", dividend.Amount)
	}
}

func TestParse_InvalidOFX(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "Empty content", content: ""},
		{name: "Invalid XML", content: "<OFX><INVALID>"},
		{name: "Missing required fields", content: "OFXHEADER:100\n<OFX></OFX>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().Parse(context.Background(), strings.NewReader(tt.content), newMeta(t))
			if err == nil {
				t.Error("Parse() expected error, got nil")
			}
		})
	}
}

func TestParse_NoSupportedStatementTypes(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), strings.NewReader(ofxDocument("")), newMeta(t))
	if err == nil {
		t.Fatal("Expected error for OFX with no statement types, got nil")
	}
	if !strings.Contains(err.Error(), "no supported statement type found") {
		t.Errorf("Expected 'no supported statement type found' error, got: %v", err)
	}
}

func TestParse_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := NewParser().Parse(ctx, strings.NewReader(ofxDocument(bankStatement)), newMeta(t))
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
