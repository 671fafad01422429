// Package gncxml reads and writes the XML file format of GnuCash (gnc-v2),
// plain or gzip compressed, into a records.Records store.
//
// Only the parts of the format needed to rebuild the account tree and its
// transactions are decoded. Prices, budgets, scheduled and template
// transactions are skipped.
package gncxml

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/gnucash/book"
	"github.com/robinvdvleuten/gnucash/records"
	"github.com/robinvdvleuten/gnucash/telemetry"
)

// Element names match on the local part only, so the gnc, act, trn, split,
// cmdty and ts prefixes do not need to be declared.
type xmlFile struct {
	Books []xmlBook `xml:"book"`
}

type xmlBook struct {
	ID           string           `xml:"id"`
	Commodities  []xmlCommodity   `xml:"commodity"`
	Accounts     []xmlAccount     `xml:"account"`
	Transactions []xmlTransaction `xml:"transaction"`
}

type xmlCommodity struct {
	Space string `xml:"space"`
	ID    string `xml:"id"`
}

type xmlSlot struct {
	Key   string `xml:"key"`
	Value string `xml:"value"`
}

type xmlAccount struct {
	Name         string       `xml:"name"`
	ID           string       `xml:"id"`
	Type         string       `xml:"type"`
	Commodity    xmlCommodity `xml:"commodity"`
	CommoditySCU string       `xml:"commodity-scu"`
	Description  string       `xml:"description"`
	Code         string       `xml:"code"`
	Slots        []xmlSlot    `xml:"slots>slot"`
	Parent       string       `xml:"parent"`
}

type xmlTransaction struct {
	ID          string       `xml:"id"`
	Currency    xmlCommodity `xml:"currency"`
	Num         string       `xml:"num"`
	DatePosted  string       `xml:"date-posted>date"`
	DateEntered string       `xml:"date-entered>date"`
	Description string       `xml:"description"`
	Splits      []xmlSplit   `xml:"splits>split"`
}

type xmlSplit struct {
	ID              string `xml:"id"`
	Memo            string `xml:"memo"`
	ReconciledState string `xml:"reconciled-state"`
	Value           string `xml:"value"`
	Quantity        string `xml:"quantity"`
	Account         string `xml:"account"`
}

// Timestamps are written as "2024-01-05 10:59:00 +0000"; very old files
// may carry the date only.
var timeLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

const (
	slotEquityType     = "equity-type"
	slotOpeningBalance = "opening-balance"
)

// ReadFile decodes the GnuCash file at path.
func ReadFile(ctx context.Context, path string) (*records.Records, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	recs, err := Decode(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// Decode reads a GnuCash XML document from r. Gzip compressed input is
// detected by its magic bytes. The document must contain exactly one book.
func Decode(ctx context.Context, r io.Reader) (*records.Records, error) {
	timer := telemetry.StartTimer(ctx, "gncxml.decode")
	defer timer.End()

	in, err := uncompress(r)
	if err != nil {
		return nil, err
	}

	var doc xmlFile
	dec := xml.NewDecoder(in)
	// GnuCash declares utf-8; anything else is passed through as is.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode xml: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch len(doc.Books) {
	case 0:
		return nil, book.NewStructureError("", "file contains no book")
	case 1:
	default:
		return nil, book.NewStructureError("", fmt.Sprintf("file contains %d books, expected one", len(doc.Books)))
	}
	recs, err := convert(&doc.Books[0])
	if err != nil {
		return nil, err
	}
	stats := recs.Stats()
	timer.Count(stats.Accounts, "accounts")
	timer.Count(stats.Transactions, "transactions")
	return recs, nil
}

func uncompress(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return zr, nil
	}
	return br, nil
}

func convert(xb *xmlBook) (*records.Records, error) {
	recs := &records.Records{
		BookID:       strings.TrimSpace(xb.ID),
		Commodities:  make([]records.Commodity, 0, len(xb.Commodities)),
		Accounts:     make([]records.Account, 0, len(xb.Accounts)),
		Transactions: make([]records.Transaction, 0, len(xb.Transactions)),
	}

	for _, c := range xb.Commodities {
		recs.Commodities = append(recs.Commodities, records.Commodity{
			Space:  strings.TrimSpace(c.Space),
			Symbol: strings.TrimSpace(c.ID),
		})
	}

	for _, xa := range xb.Accounts {
		acc, err := convertAccount(xa)
		if err != nil {
			return nil, err
		}
		recs.Accounts = append(recs.Accounts, acc)
	}

	for _, xt := range xb.Transactions {
		tr, err := convertTransaction(xt)
		if err != nil {
			return nil, err
		}
		recs.Transactions = append(recs.Transactions, tr)
	}
	return recs, nil
}

func convertAccount(xa xmlAccount) (records.Account, error) {
	acc := records.Account{
		ID:          strings.TrimSpace(xa.ID),
		Name:        xa.Name,
		Type:        strings.TrimSpace(xa.Type),
		ParentID:    strings.TrimSpace(xa.Parent),
		Description: xa.Description,
		Code:        xa.Code,
		CommodityID: strings.TrimSpace(xa.Commodity.ID),
	}
	if scu := strings.TrimSpace(xa.CommoditySCU); scu != "" {
		n, err := strconv.Atoi(scu)
		if err != nil {
			return acc, book.NewParseError(scu, "commodity-scu of account "+acc.ID, err)
		}
		acc.CommoditySCU = n
	}
	for _, slot := range xa.Slots {
		if strings.TrimSpace(slot.Key) == slotEquityType && strings.TrimSpace(slot.Value) == slotOpeningBalance {
			acc.OpeningBalance = true
		}
	}
	return acc, nil
}

func convertTransaction(xt xmlTransaction) (records.Transaction, error) {
	tr := records.Transaction{
		ID:          strings.TrimSpace(xt.ID),
		Description: xt.Description,
		Num:         xt.Num,
		CurrencyID:  strings.TrimSpace(xt.Currency.ID),
		Splits:      make([]records.Split, 0, len(xt.Splits)),
	}

	var err error
	if tr.DatePosted, err = ParseTime(xt.DatePosted); err != nil {
		return tr, book.NewParseError(xt.DatePosted, "date-posted of transaction "+tr.ID, err)
	}
	if strings.TrimSpace(xt.DateEntered) != "" {
		if tr.DateEntered, err = ParseTime(xt.DateEntered); err != nil {
			return tr, book.NewParseError(xt.DateEntered, "date-entered of transaction "+tr.ID, err)
		}
	}

	for _, xs := range xt.Splits {
		s := records.Split{
			ID:             strings.TrimSpace(xs.ID),
			AccountID:      strings.TrimSpace(xs.Account),
			Memo:           xs.Memo,
			ReconcileState: strings.TrimSpace(xs.ReconciledState),
		}
		if s.Value, err = ParseFraction(xs.Value); err != nil {
			return tr, book.NewParseError(xs.Value, "value of split "+s.ID, err)
		}
		if strings.TrimSpace(xs.Quantity) == "" {
			s.Quantity = s.Value
		} else if s.Quantity, err = ParseFraction(xs.Quantity); err != nil {
			return tr, book.NewParseError(xs.Quantity, "quantity of split "+s.ID, err)
		}
		tr.Splits = append(tr.Splits, s)
	}
	return tr, nil
}

// ParseTime parses a GnuCash timestamp.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// ParseFraction parses an amount written as "numerator/denominator", such
// as "-1250/100". Power of ten denominators give an exact decimal.
func ParseFraction(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	numStr, denomStr, ok := strings.Cut(s, "/")
	if !ok {
		denomStr = "1"
	}

	num, err := decimal.NewFromString(strings.TrimSpace(numStr))
	if err != nil {
		return decimal.Zero, err
	}
	denomStr = strings.TrimSpace(denomStr)
	if exp, ok := powerOfTen(denomStr); ok {
		return num.Shift(-exp), nil
	}

	denom, err := decimal.NewFromString(denomStr)
	if err != nil {
		return decimal.Zero, err
	}
	if denom.IsZero() {
		return decimal.Zero, fmt.Errorf("zero denominator")
	}
	return num.Div(denom), nil
}

func powerOfTen(s string) (int32, bool) {
	if s == "" || s[0] != '1' {
		return 0, false
	}
	for _, c := range s[1:] {
		if c != '0' {
			return 0, false
		}
	}
	return int32(len(s) - 1), true
}
