// Package telegram turns raw JMA/dmdata XML telegram bodies into the
// domain.TelegramEvent union. Each family gets its own pure parser function
// over the raw bytes, per spec §9's "Polymorphism across telegram families"
// design note; the dispatcher performs the head.type case analysis the
// Python source did with ad-hoc isinstance checks and wraps each parser's
// result in its TelegramEvent branch.
//
// Grounded on original_source/internal/dmdata/{eew,earthquake}.py and
// modules/tsunami/main.py for per-family semantics. The head-peek uses
// antchfx/xmlquery (99souls-ariadne's dependency) to read head.type
// before committing to a full typed decode; each family's
// body is then unmarshaled with stdlib encoding/xml into a small envelope
// tailored to the fields that family's parser actually needs.
package telegram

import (
	"encoding/xml"
	"fmt"

	"github.com/antchfx/xmlquery"

	"github.com/shindosokuho/relay/internal/relayerr"
)

// Head is the telegram envelope's Head block, common to every family.
type Head struct {
	Title          string `xml:"Title"`
	ReportDateTime string `xml:"ReportDateTime"`
	TargetDateTime string `xml:"TargetDateTime"`
	EventID        string `xml:"EventID"`
	Serial         string `xml:"Serial"`
	InfoType       string `xml:"InfoType"` // 発表 (issued) / 取消 (cancel)
	Headline       struct {
		Text string `xml:"Text"`
	} `xml:"Headline"`
}

// Control is the telegram envelope's Control block.
type Control struct {
	Title           string `xml:"Title"`
	Status          string `xml:"Status"` // 通常 (normal) / 試験 (test) / 訓練 (training)
	EditorialOffice string `xml:"EditorialOffice"`
}

// IsIssued reports whether the Head's InfoType denotes a live report rather
// than a cancellation, spec §4.3/§4.4 "Cancellation: if the report's
// info-status field is not issued...".
func (h Head) IsIssued() bool {
	return h.InfoType == "" || h.InfoType == "発表"
}

// ControlStatus classifies the Control.Status field into the lifecycle
// tags the EEW/earthquake parsers attach, spec §4.3 "Training/test
// discrimination from control status".
func ControlStatus(status string) string {
	switch status {
	case "試験":
		return "test"
	case "訓練":
		return "training"
	default:
		return "normal"
	}
}

// PeekHeadType reads head.type (the telegram type code, e.g. VXSE44) from
// raw XML without committing to a full typed decode, so the dispatcher can
// route before parsing. dmdata's envelope surfaces this as an attribute on
// the root Report element in the wire format this client subscribes to.
func PeekHeadType(raw []byte) (string, error) {
	doc, err := xmlquery.Parse(newByteReader(raw))
	if err != nil {
		return "", relayerr.New("telegram.peek_head_type", relayerr.KindDecode, err)
	}
	node := xmlquery.FindOne(doc, "//Head/Title/../../@type|//@type")
	if node != nil && node.InnerText() != "" {
		return node.InnerText(), nil
	}
	// Fall back to a root-attribute lookup for the common dmdata shape:
	// <Report type="VXSE44" ...> wrapping Head/Control/Body.
	root := xmlquery.FindOne(doc, "//*[@type]")
	if root == nil {
		return "", relayerr.New("telegram.peek_head_type", relayerr.KindDecode,
			fmt.Errorf("no type attribute found in telegram envelope"))
	}
	return root.SelectAttr("type"), nil
}

func decodeEnvelope(raw []byte, v any) error {
	if err := xml.Unmarshal(raw, v); err != nil {
		return relayerr.New("telegram.decode", relayerr.KindDecode, err)
	}
	return nil
}
