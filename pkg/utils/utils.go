package utils

import (
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/logrusorgru/aurora/v3"
)

const TimeFmt = "2006 Jan _2 15:04:05"

type Style func(any) aurora.Value

// Styler colours terminal output. With colour off everything renders as plain text.
type Styler struct {
	au aurora.Aurora

	InfoStyle   Style
	FailStyle   Style
	OkStyle     Style
	WarnStyle   Style
	AddrStyle   Style
	VerbStyle   Style
	NounStyle   Style
	BrightStyle Style
}

func NewStyler(colour bool) Styler {
	au := aurora.NewAurora(colour)
	return Styler{
		au:          au,
		InfoStyle:   au.BrightBlack,
		FailStyle:   au.Red,
		OkStyle:     au.Green,
		WarnStyle:   au.Yellow,
		AddrStyle:   au.Blue,
		VerbStyle:   au.Magenta,
		NounStyle:   au.Cyan,
		BrightStyle: au.White,
	}
}

func (s Styler) Info(a any) string { return s.InfoStyle(a).String() }
func (s Styler) Fail(a any) string { return s.FailStyle(a).String() }
func (s Styler) Ok(a any) string { return s.OkStyle(a).String() }
func (s Styler) Warn(a any) string { return s.WarnStyle(a).String() }
func (s Styler) Addr(a any) string { return s.AddrStyle(a).String() }
func (s Styler) Verb(a any) string { return s.VerbStyle(a).String() }
func (s Styler) Noun(a any) string { return s.NounStyle(a).String() }
func (s Styler) Bright(a any) string { return s.BrightStyle(a).String() }

func (s Styler) YesNo(test bool) string {
	if test {
		return s.au.Bold(s.au.Green("yes")).String()
	}
	return s.au.Bold(s.au.Red("no")).String()
}

func (s Styler) OptionalString(str string, style Style) string {
	if str == "" {
		return s.Info("<none>")
	}
	return style(str).String()
}

func (s Styler) Time(t time.Time, start bool) string {
	if start {
		if t.After(time.Now()) {
			return s.Fail(t.Format(TimeFmt))
		}
		return s.Ok(t.Format(TimeFmt))
	}

	if t.Before(time.Now()) {
		return s.Fail(t.Format(TimeFmt))
	} else if t.Before(time.Now().Add(240 * time.Hour)) {
		return s.Warn(t.Format(TimeFmt))
	}
	return s.Ok(t.Format(TimeFmt))
}

func (s Styler) List(ss []string) string {
	if len(ss) == 0 {
		return s.Info("<none>")
	}
	return strings.Join(ss, ", ")
}

func (s Styler) DNSList(names []string) string {
	var ss []string
	for _, name := range names {
		ss = append(ss, s.Addr(name))
	}
	return s.List(ss)
}

func (s Styler) IPList(ips []net.IP) string {
	var ss []string
	for _, ip := range ips {
		ss = append(ss, s.Addr(ip.String()))
	}
	return s.List(ss)
}

func (s Styler) CertBasics(cert *x509.Certificate) string {
	caFlag := s.Info("non-ca")
	if cert.IsCA {
		caFlag = s.Ok("ca")
	}

	return fmt.Sprintf("\t[%s -> %s] %s subj %s [%s]",
		s.Time(cert.NotBefore, true), s.Time(cert.NotAfter, false),
		s.Noun(cert.PublicKeyAlgorithm.String()), s.Addr(cert.Subject.String()),
		// No need to print Issuer, cause that's the Subject of the next cert in the chain
		caFlag,
	)
}

func (s Styler) Banner(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, s.Bright(fmt.Sprintf("== %s ==", title)))
	fmt.Fprintln(w)
}

func (s Styler) PrintWarn(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", s.au.Bold(s.au.Yellow("Warning:")), msg)
}

// CheckErr prints err and reports whether there was one.
func (s Styler) CheckErr(w io.Writer, err error) bool {
	if err != nil {
		fmt.Fprintf(w, "%s %v\n", s.au.Bold(s.au.Red("Error:")), err)
		return true
	}
	return false
}
