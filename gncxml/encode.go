package gncxml

import (
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/gnucash/records"
)

// The writer uses the prefixed names GnuCash itself writes. The namespace
// declarations on the root element make the output readable by GnuCash.
type gncFile struct {
	XMLName xml.Name   `xml:"gnc-v2"`
	Attrs   []xml.Attr `xml:",any,attr"`
	Count   gncCount   `xml:"gnc:count-data"`
	Book    gncBook    `xml:"gnc:book"`
}

type gncCount struct {
	Type  string `xml:"cd:type,attr"`
	Value int    `xml:",chardata"`
}

type gncID struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type gncBook struct {
	Version      string           `xml:"version,attr"`
	ID           gncID            `xml:"book:id"`
	Counts       []gncCount       `xml:"gnc:count-data"`
	Commodities  []gncCommodity   `xml:"gnc:commodity"`
	Accounts     []gncAccount     `xml:"gnc:account"`
	Transactions []gncTransaction `xml:"gnc:transaction"`
}

type gncCommodity struct {
	Version string `xml:"version,attr"`
	Space   string `xml:"cmdty:space"`
	ID      string `xml:"cmdty:id"`
}

type gncCommodityRef struct {
	Space string `xml:"cmdty:space"`
	ID    string `xml:"cmdty:id"`
}

type gncSlot struct {
	Key   string       `xml:"slot:key"`
	Value gncSlotValue `xml:"slot:value"`
}

type gncSlotValue struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type gncAccount struct {
	Version      string           `xml:"version,attr"`
	Name         string           `xml:"act:name"`
	ID           gncID            `xml:"act:id"`
	Type         string           `xml:"act:type"`
	Commodity    *gncCommodityRef `xml:"act:commodity,omitempty"`
	CommoditySCU int              `xml:"act:commodity-scu,omitempty"`
	Code         string           `xml:"act:code,omitempty"`
	Description  string           `xml:"act:description,omitempty"`
	Slots        []gncSlot        `xml:"act:slots>slot,omitempty"`
	Parent       *gncID           `xml:"act:parent,omitempty"`
}

type gncDate struct {
	Date string `xml:"ts:date"`
}

type gncTransaction struct {
	Version     string          `xml:"version,attr"`
	ID          gncID           `xml:"trn:id"`
	Currency    gncCommodityRef `xml:"trn:currency"`
	Num         string          `xml:"trn:num,omitempty"`
	DatePosted  gncDate         `xml:"trn:date-posted"`
	DateEntered gncDate         `xml:"trn:date-entered"`
	Description string          `xml:"trn:description"`
	Splits      []gncSplit      `xml:"trn:splits>trn:split"`
}

type gncSplit struct {
	ID              gncID  `xml:"split:id"`
	Memo            string `xml:"split:memo,omitempty"`
	ReconciledState string `xml:"split:reconciled-state"`
	Value           string `xml:"split:value"`
	Quantity        string `xml:"split:quantity"`
	Account         gncID  `xml:"split:account"`
}

var namespaces = []string{
	"gnc", "act", "book", "cd", "cmdty", "slot", "split", "trn", "ts",
}

const timeLayout = "2006-01-02 15:04:05 -0700"

// Encode writes recs as an uncompressed GnuCash XML document.
func Encode(w io.Writer, recs *records.Records) error {
	doc := gncFile{
		Count: gncCount{Type: "book", Value: 1},
		Book:  toGnc(recs),
	}
	for _, ns := range namespaces {
		doc.Attrs = append(doc.Attrs, xml.Attr{
			Name:  xml.Name{Local: "xmlns:" + ns},
			Value: "http://www.gnucash.org/XML/" + ns,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode xml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// EncodeGzip writes recs gzip compressed, the way GnuCash saves by default.
func EncodeGzip(w io.Writer, recs *records.Records) error {
	zw := gzip.NewWriter(w)
	if err := Encode(zw, recs); err != nil {
		return err
	}
	return zw.Close()
}

func toGnc(recs *records.Records) gncBook {
	stats := recs.Stats()
	b := gncBook{
		Version: "2.0.0",
		ID:      gncID{Type: "guid", Value: recs.BookID},
		Counts: []gncCount{
			{Type: "commodity", Value: stats.Commodities},
			{Type: "account", Value: stats.Accounts},
			{Type: "transaction", Value: stats.Transactions},
		},
	}

	for _, c := range recs.Commodities {
		b.Commodities = append(b.Commodities, gncCommodity{Version: "2.0.0", Space: c.Space, ID: c.Symbol})
	}

	spaces := make(map[string]string, len(recs.Commodities))
	for _, c := range recs.Commodities {
		spaces[c.Symbol] = c.Space
	}

	for _, a := range recs.Accounts {
		ga := gncAccount{
			Version:      "2.0.0",
			Name:         a.Name,
			ID:           gncID{Type: "guid", Value: a.ID},
			Type:         a.Type,
			CommoditySCU: a.CommoditySCU,
			Code:         a.Code,
			Description:  a.Description,
		}
		if a.CommodityID != "" {
			ga.Commodity = &gncCommodityRef{Space: spaces[a.CommodityID], ID: a.CommodityID}
		}
		if a.ParentID != "" {
			ga.Parent = &gncID{Type: "guid", Value: a.ParentID}
		}
		if a.OpeningBalance {
			ga.Slots = append(ga.Slots, gncSlot{
				Key:   slotEquityType,
				Value: gncSlotValue{Type: "string", Value: slotOpeningBalance},
			})
		}
		b.Accounts = append(b.Accounts, ga)
	}

	for _, t := range recs.Transactions {
		gt := gncTransaction{
			Version:     "2.0.0",
			ID:          gncID{Type: "guid", Value: t.ID},
			Currency:    gncCommodityRef{Space: spaces[t.CurrencyID], ID: t.CurrencyID},
			Num:         t.Num,
			DatePosted:  gncDate{Date: FormatTime(t.DatePosted)},
			DateEntered: gncDate{Date: FormatTime(t.DateEntered)},
			Description: t.Description,
		}
		for _, s := range t.Splits {
			state := s.ReconcileState
			if state == "" {
				state = "n"
			}
			gt.Splits = append(gt.Splits, gncSplit{
				ID:              gncID{Type: "guid", Value: s.ID},
				Memo:            s.Memo,
				ReconciledState: state,
				Value:           FormatFraction(s.Value),
				Quantity:        FormatFraction(s.Quantity),
				Account:         gncID{Type: "guid", Value: s.AccountID},
			})
		}
		b.Transactions = append(b.Transactions, gt)
	}
	return b
}

// FormatTime formats t as a GnuCash timestamp.
func FormatTime(t time.Time) string {
	return t.Format(timeLayout)
}

// FormatFraction writes d as "numerator/denominator" with a power of ten
// denominator of at least 100.
func FormatFraction(d decimal.Decimal) string {
	scale := int32(2)
	if e := -d.Exponent(); e > scale {
		scale = e
	}
	return d.Shift(scale).StringFixed(0) + "/1" + strings.Repeat("0", int(scale))
}
