package ofx

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-spice-must-sync/internal/model"
)

const sampleBankOFX = `OFXHEADER:100
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
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
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
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
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
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
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
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantCount int
		wantErr   bool
	}{
		{name: "bank statement", data: sampleBankOFX, wantCount: 3},
		{name: "credit card statement", data: sampleCreditCardOFX, wantCount: 2},
		{name: "garbage", data: "not valid OFX", wantErr: true},
		{name: "empty", data: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := NewParser(nil).Parse(context.Background(), strings.NewReader(tt.data))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, entries, tt.wantCount)
		})
	}
}

func TestParse_BankEntries(t *testing.T) {
	entries, err := NewParser(nil).Parse(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	first := entries[0]
	assert.Equal(t, "2024011501", first.FITID)
	assert.Equal(t, "1234567890", first.AccountID)
	assert.Equal(t, "STARBUCKS STORE #1234", first.Description)
	assert.Equal(t, "DEBIT", first.Type)
	assert.InDelta(t, -25.50, first.Amount, 0.001)
	assert.Equal(t, time.January, first.Posted.Month())
	assert.Equal(t, 15, first.Posted.Day())

	check := entries[2]
	assert.Equal(t, "CHECK", check.Type)
	assert.Equal(t, "1234", check.CheckNumber)
	assert.InDelta(t, -500.0, check.Amount, 0.001)
}

func TestParse_LeadingWhitespace(t *testing.T) {
	entries, err := NewParser(nil).Parse(context.Background(), strings.NewReader("\n\n  "+sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "4111111111111111", entries[0].AccountID)
	assert.InDelta(t, -45.99, entries[0].Amount, 0.001)
}

func TestNormalize(t *testing.T) {
	in := "\n  <OFX>\n<SEVERITY>Info</SEVERITY>\n<BANKTRANLIST\n"
	assert.Equal(t, "<OFX>\n<SEVERITY>INFO</SEVERITY>\n<BANKTRANLIST>\n", normalize(in))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		tx   ofxgo.Transaction
		want string
	}{
		{name: "strips POS prefix", tx: ofxgo.Transaction{Name: "POS PURCHASE STARBUCKS"}, want: "STARBUCKS"},
		{name: "strips card prefix", tx: ofxgo.Transaction{Name: "DEBIT CARD PURCHASE WHOLE FOODS"}, want: "WHOLE FOODS"},
		{name: "strips date", tx: ofxgo.Transaction{Name: "CHECK CARD 01/15 SHELL OIL"}, want: "SHELL OIL"},
		{name: "keeps clean name", tx: ofxgo.Transaction{Name: "NETFLIX.COM"}, want: "NETFLIX.COM"},
		{name: "trims", tx: ofxgo.Transaction{Name: "  AMAZON.COM  "}, want: "AMAZON.COM"},
		{name: "memo replaces generic name", tx: ofxgo.Transaction{Name: "DEBIT", Memo: "CORNER BAKERY"}, want: "CORNER BAKERY"},
		{name: "payee wins", tx: ofxgo.Transaction{Name: "XX", Payee: &ofxgo.Payee{Name: "Landlord LLC"}}, want: "Landlord LLC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.tx))
		})
	}
}

func TestEntryTransaction(t *testing.T) {
	posted := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	entry := Entry{FITID: "F1", AccountID: "A1", Description: "Coffee", Amount: -3.5, Posted: posted}

	txn := entry.Transaction("u1", "food")
	assert.Equal(t, "u1", txn.UserID)
	assert.Equal(t, "food", txn.CategoryID)
	assert.Equal(t, "Coffee", txn.Description)
	assert.InDelta(t, -3.5, txn.Amount, 0)
	assert.True(t, posted.Equal(txn.Timestamp))
	require.NoError(t, model.ValidateTransaction(txn))

	assert.Equal(t, txn.ID, entry.Transaction("u1", "food").ID, "same FITID, same ID")

	other := entry
	other.AccountID = "A2"
	assert.NotEqual(t, txn.ID, other.Transaction("u1", "food").ID)

	noFITID := entry
	noFITID.FITID = ""
	assert.NotEqual(t, noFITID.Transaction("u1", "food").ID, noFITID.Transaction("u1", "food").ID)
}

func TestAccounts(t *testing.T) {
	parser := NewParser(nil)

	accounts, err := parser.Accounts(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"1234567890"}, accounts)

	accounts, err = parser.Accounts(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"4111111111111111"}, accounts)
}

type MockCreator struct {
	mock.Mock
}

func (m *MockCreator) CreateTransaction(ctx context.Context, t model.Transaction) (*model.Transaction, error) {
	args := m.Called(ctx, t)
	if fn, ok := args.Get(0).(func(context.Context, model.Transaction) *model.Transaction); ok {
		return fn(ctx, t), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	created, ok := args.Get(0).(*model.Transaction)
	if !ok {
		return nil, errors.New("unexpected type")
	}
	return created, args.Error(1)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	entries, err := NewParser(nil).Parse(ctx, strings.NewReader(sampleBankOFX))
	require.NoError(t, err)

	creator := &MockCreator{}
	creator.On("CreateTransaction", ctx, mock.AnythingOfType("model.Transaction")).
		Return(func(_ context.Context, t model.Transaction) *model.Transaction { return &t }, nil)

	var seen []string
	n, err := Import(ctx, creator, entries, "u1", "groceries", func(t model.Transaction) {
		seen = append(seen, t.Description)
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"STARBUCKS STORE #1234", "Whole Foods Market", "CHECK #1234"}, seen)
	creator.AssertNumberOfCalls(t, "CreateTransaction", 3)
}

func TestImport_StopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	entries, err := NewParser(nil).Parse(ctx, strings.NewReader(sampleBankOFX))
	require.NoError(t, err)

	first := entries[0].Transaction("u1", "groceries")
	creator := &MockCreator{}
	creator.On("CreateTransaction", ctx, first).Return(&first, nil).Once()
	creator.On("CreateTransaction", ctx, mock.AnythingOfType("model.Transaction")).Return(nil, errors.New("offline")).Once()

	n, err := Import(ctx, creator, entries, "u1", "groceries", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2024012001")
	assert.Equal(t, 1, n)
	creator.AssertNumberOfCalls(t, "CreateTransaction", 2)
}
