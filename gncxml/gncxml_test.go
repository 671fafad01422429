package gncxml_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/gnucash/book"
	"github.com/robinvdvleuten/gnucash/gncxml"
	"github.com/robinvdvleuten/gnucash/records"
)

const sampleXML = `<?xml version="1.0" encoding="utf-8" ?>
<gnc-v2
     xmlns:gnc="http://www.gnucash.org/XML/gnc"
     xmlns:act="http://www.gnucash.org/XML/act"
     xmlns:book="http://www.gnucash.org/XML/book"
     xmlns:cd="http://www.gnucash.org/XML/cd"
     xmlns:cmdty="http://www.gnucash.org/XML/cmdty"
     xmlns:slot="http://www.gnucash.org/XML/slot"
     xmlns:split="http://www.gnucash.org/XML/split"
     xmlns:trn="http://www.gnucash.org/XML/trn"
     xmlns:ts="http://www.gnucash.org/XML/ts">
<gnc:count-data cd:type="book">1</gnc:count-data>
<gnc:book version="2.0.0">
<book:id type="guid">b0000000000000000000000000000001</book:id>
<gnc:count-data cd:type="commodity">1</gnc:count-data>
<gnc:commodity version="2.0.0">
  <cmdty:space>ISO4217</cmdty:space>
  <cmdty:id>EUR</cmdty:id>
</gnc:commodity>
<gnc:account version="2.0.0">
  <act:name>Root Account</act:name>
  <act:id type="guid">a0000000000000000000000000000000</act:id>
  <act:type>ROOT</act:type>
</gnc:account>
<gnc:account version="2.0.0">
  <act:name>Cash</act:name>
  <act:id type="guid">a0000000000000000000000000000001</act:id>
  <act:type>CASH</act:type>
  <act:commodity>
    <cmdty:space>ISO4217</cmdty:space>
    <cmdty:id>EUR</cmdty:id>
  </act:commodity>
  <act:commodity-scu>100</act:commodity-scu>
  <act:code>1000</act:code>
  <act:parent type="guid">a0000000000000000000000000000000</act:parent>
</gnc:account>
<gnc:account version="2.0.0">
  <act:name>Opening Balances</act:name>
  <act:id type="guid">a0000000000000000000000000000002</act:id>
  <act:type>EQUITY</act:type>
  <act:commodity>
    <cmdty:space>ISO4217</cmdty:space>
    <cmdty:id>EUR</cmdty:id>
  </act:commodity>
  <act:commodity-scu>100</act:commodity-scu>
  <act:slots>
    <slot>
      <slot:key>equity-type</slot:key>
      <slot:value type="string">opening-balance</slot:value>
    </slot>
  </act:slots>
  <act:parent type="guid">a0000000000000000000000000000000</act:parent>
</gnc:account>
<gnc:transaction version="2.0.0">
  <trn:id type="guid">t0000000000000000000000000000001</trn:id>
  <trn:currency>
    <cmdty:space>ISO4217</cmdty:space>
    <cmdty:id>EUR</cmdty:id>
  </trn:currency>
  <trn:num>001</trn:num>
  <trn:date-posted>
    <ts:date>2024-01-05 10:59:00 +0100</ts:date>
  </trn:date-posted>
  <trn:date-entered>
    <ts:date>2024-01-06 08:00:00 +0000</ts:date>
  </trn:date-entered>
  <trn:description>Opening &amp; balance</trn:description>
  <trn:slots>
    <slot>
      <slot:key>date-posted</slot:key>
      <slot:value type="gdate">
        <gdate>2024-01-05</gdate>
      </slot:value>
    </slot>
  </trn:slots>
  <trn:splits>
    <trn:split>
      <split:id type="guid">s0000000000000000000000000000001</split:id>
      <split:reconciled-state>n</split:reconciled-state>
      <split:value>1250/100</split:value>
      <split:quantity>1250/100</split:quantity>
      <split:account type="guid">a0000000000000000000000000000001</split:account>
    </trn:split>
    <trn:split>
      <split:id type="guid">s0000000000000000000000000000002</split:id>
      <split:memo>start</split:memo>
      <split:reconciled-state>c</split:reconciled-state>
      <split:value>-1250/100</split:value>
      <split:quantity>-1250/100</split:quantity>
      <split:account type="guid">a0000000000000000000000000000002</split:account>
    </trn:split>
  </trn:splits>
</gnc:transaction>
</gnc:book>
</gnc-v2>
`

func TestDecode(t *testing.T) {
	recs, err := gncxml.Decode(context.Background(), strings.NewReader(sampleXML))
	assert.NoError(t, err)

	assert.Equal(t, "b0000000000000000000000000000001", recs.BookID)
	assert.Equal(t, []records.Commodity{{Space: "ISO4217", Symbol: "EUR"}}, recs.Commodities)
	assert.Equal(t, records.Stats{Commodities: 1, Accounts: 3, Transactions: 1, Splits: 2}, recs.Stats())

	root, cash, opening := recs.Accounts[0], recs.Accounts[1], recs.Accounts[2]
	assert.Equal(t, "ROOT", root.Type)
	assert.Equal(t, "", root.ParentID)
	assert.Equal(t, records.Account{
		ID:           "a0000000000000000000000000000001",
		Name:         "Cash",
		Type:         "CASH",
		ParentID:     "a0000000000000000000000000000000",
		Code:         "1000",
		CommodityID:  "EUR",
		CommoditySCU: 100,
	}, cash)
	assert.True(t, opening.OpeningBalance)
	assert.False(t, cash.OpeningBalance)

	tr := recs.Transactions[0]
	assert.Equal(t, "001", tr.Num)
	assert.Equal(t, "Opening & balance", tr.Description)
	assert.Equal(t, "EUR", tr.CurrencyID)
	assert.True(t, tr.DatePosted.Equal(time.Date(2024, 1, 5, 9, 59, 0, 0, time.UTC)))
	assert.True(t, tr.DateEntered.Equal(time.Date(2024, 1, 6, 8, 0, 0, 0, time.UTC)))

	assert.Equal(t, "12.5", tr.Splits[0].Value.String())
	assert.Equal(t, "-12.5", tr.Splits[1].Quantity.String())
	assert.Equal(t, "start", tr.Splits[1].Memo)
	assert.Equal(t, "c", tr.Splits[1].ReconcileState)
	assert.Equal(t, "a0000000000000000000000000000002", tr.Splits[1].AccountID)
}

func TestDecodeBuildsBook(t *testing.T) {
	recs, err := gncxml.Decode(context.Background(), strings.NewReader(sampleXML))
	assert.NoError(t, err)

	b, err := book.Build(context.Background(), recs, nil)
	assert.NoError(t, err)

	cash, err := b.AcByPath(":Cash")
	assert.NoError(t, err)
	assert.Equal(t, "12.5", cash.OpeningBalance().String())
}

func TestDecodeGzip(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, gncxml.EncodeGzip(&buf, sampleRecords()))
	assert.Equal(t, byte(0x1f), buf.Bytes()[0])

	recs, err := gncxml.Decode(context.Background(), &buf)
	assert.NoError(t, err)
	assert.Equal(t, 4, len(recs.Accounts))
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   string
	}{
		{
			name:  "NotXML",
			input: "this is not xml",
			err:   "failed to decode xml",
		},
		{
			name:  "NoBook",
			input: `<gnc-v2></gnc-v2>`,
			err:   "file contains no book",
		},
		{
			name:  "TwoBooks",
			input: `<gnc-v2><book></book><book></book></gnc-v2>`,
			err:   "file contains 2 books, expected one",
		},
		{
			name: "BadValue",
			input: `<gnc-v2><book><transaction><id>t1</id>
				<date-posted><date>2024-01-01 00:00:00 +0000</date></date-posted>
				<splits><split><id>s1</id><value>twelve</value></split></splits>
			</transaction></book></gnc-v2>`,
			err: "value of split s1",
		},
		{
			name: "BadDate",
			input: `<gnc-v2><book><transaction><id>t1</id>
				<date-posted><date>yesterday</date></date-posted>
			</transaction></book></gnc-v2>`,
			err: "date-posted of transaction t1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gncxml.Decode(context.Background(), strings.NewReader(tt.input))
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestParseFraction(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1250/100", "12.5"},
		{"-1250/100", "-12.5"},
		{"0/100", "0"},
		{"7/1", "7"},
		{"12345/1000", "12.345"},
		{"1/4", "0.25"},
		{"42", "42"},
		{" 100/10 ", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := gncxml.ParseFraction(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	_, err := gncxml.ParseFraction("1/0")
	assert.Error(t, err)
	_, err = gncxml.ParseFraction("a/100")
	assert.Error(t, err)
}

func TestFormatFraction(t *testing.T) {
	for _, tt := range []struct{ input, want string }{
		{"12.5", "1250/100"},
		{"-1000", "-100000/100"},
		{"0.125", "125/1000"},
		{"0", "0/100"},
	} {
		v, err := gncxml.ParseFraction(tt.input)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, gncxml.FormatFraction(v))
	}
}

func sampleRecords() *records.Records {
	b := records.NewBuilder("EUR")
	assets := b.Account(b.Root(), "Assets", "ASSET")
	cash := b.Account(assets, "Cash", "CASH")
	opening := b.OpeningAccount(b.Root(), "Opening Balances")
	b.Post(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), "", "census 100.00",
		records.NewLeg(cash, "100"),
		records.NewLeg(opening, "-100"),
	)
	return b.Records()
}

func TestEncodeRoundTrip(t *testing.T) {
	want := sampleRecords()

	var buf bytes.Buffer
	assert.NoError(t, gncxml.Encode(&buf, want))
	assert.Contains(t, buf.String(), "<gnc:book version=\"2.0.0\">")
	assert.Contains(t, buf.String(), "<split:value>10000/100</split:value>")

	got, err := gncxml.Decode(context.Background(), &buf)
	assert.NoError(t, err)

	assert.Equal(t, want.BookID, got.BookID)
	assert.Equal(t, want.Commodities, got.Commodities)
	assert.Equal(t, want.Accounts, got.Accounts)
	assert.Equal(t, len(want.Transactions), len(got.Transactions))

	wt, gt := want.Transactions[0], got.Transactions[0]
	assert.Equal(t, wt.ID, gt.ID)
	assert.Equal(t, "", gt.Num)
	assert.Equal(t, wt.Description, gt.Description)
	assert.True(t, wt.DatePosted.Equal(gt.DatePosted))
	for i := range wt.Splits {
		assert.Equal(t, wt.Splits[i].ID, gt.Splits[i].ID)
		assert.Equal(t, wt.Splits[i].AccountID, gt.Splits[i].AccountID)
		assert.True(t, wt.Splits[i].Value.Equal(gt.Splits[i].Value))
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "club.gnucash")
	assert.NoError(t, os.WriteFile(path, []byte(sampleXML), 0o644))

	recs, err := gncxml.ReadFile(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(recs.Accounts))

	_, err = gncxml.ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing.gnucash"))
	assert.Error(t, err)
}
