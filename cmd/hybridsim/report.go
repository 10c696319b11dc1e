package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	hybridmsg "github.com/hybridmsg/hybridmsg-go"
)

// Report summarizes a simulation run.
type Report struct {
	Scheme     string        `json:"scheme"`
	Mode       string        `json:"mode"`
	Delivery   string        `json:"delivery"`
	Users      int           `json:"users"`
	Messages   int           `json:"messages"`
	Deliveries int           `json:"deliveries"`
	Failures   int           `json:"failures"`
	Elapsed    time.Duration `json:"elapsedNs"`
	Encrypt    PhaseSummary  `json:"encrypt"`
	Decrypt    PhaseSummary  `json:"decrypt"`
}

// PhaseSummary aggregates OperationStats of one operation kind.
type PhaseSummary struct {
	Count         int           `json:"count"`
	Failed        int           `json:"failed"`
	Crypto        time.Duration `json:"cryptoNs"`
	Signature     time.Duration `json:"signatureNs"`
	Total         time.Duration `json:"totalNs"`
	EncryptedSize int           `json:"encryptedSize"`
	SignatureSize int           `json:"signatureSize"`
}

func newReport(s Scenario) *Report {
	return &Report{
		Scheme:   s.Scheme,
		Mode:     s.Mode,
		Delivery: s.Delivery,
		Users:    len(s.names()),
		Messages: s.Messages,
	}
}

func (r *Report) add(stats []hybridmsg.OperationStats) {
	for _, st := range stats {
		switch st.Operation {
		case hybridmsg.OperationEncrypt:
			r.Encrypt.addStats(st, st.EncryptTime, st.SignTime)
		case hybridmsg.OperationDecrypt:
			r.Decrypt.addStats(st, st.DecryptTime, st.VerifyTime)
		}
	}
}

func (p *PhaseSummary) addStats(st hybridmsg.OperationStats, crypto, signature time.Duration) {
	p.Count++
	if !st.Success {
		p.Failed++
	}
	p.Crypto += crypto
	p.Signature += signature
	p.Total += st.TotalTime
	p.EncryptedSize += st.EncryptedSize
	p.SignatureSize += st.SignatureSize
}

func (p PhaseSummary) avg(d time.Duration) time.Duration {
	if p.Count == 0 {
		return 0
	}
	return d / time.Duration(p.Count)
}

func (r *Report) writeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func (r *Report) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "scheme\t%s\n", r.Scheme)
	fmt.Fprintf(tw, "mode\t%s (%s delivery)\n", r.Mode, r.Delivery)
	fmt.Fprintf(tw, "users\t%d\n", r.Users)
	fmt.Fprintf(tw, "messages\t%d\n", r.Messages)
	fmt.Fprintf(tw, "deliveries\t%d (%d failed)\n", r.Deliveries, r.Failures)
	fmt.Fprintf(tw, "elapsed\t%v\n", r.Elapsed.Round(time.Microsecond))
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "operation\tcount\tavg crypto\tavg sign/verify\tavg total")
	for _, row := range []struct {
		name string
		p    PhaseSummary
	}{{"encrypt", r.Encrypt}, {"decrypt", r.Decrypt}} {
		fmt.Fprintf(tw, "%s\t%d\t%v\t%v\t%v\n", row.name, row.p.Count,
			row.p.avg(row.p.Crypto).Round(time.Microsecond),
			row.p.avg(row.p.Signature).Round(time.Microsecond),
			row.p.avg(row.p.Total).Round(time.Microsecond),
		)
	}
	return tw.Flush()
}
