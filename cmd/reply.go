package cmd

import (
	"strconv"
	"strings"
)

// reply is the result of one command, rendered the way redis-cli renders
// its replies. Raw rendering drops the type decorations.
type reply interface {
	format(raw bool) string
}

type statusReply string

func (r statusReply) format(bool) string {
	return string(r)
}

type intReply int

func (r intReply) format(raw bool) string {
	if raw {
		return strconv.Itoa(int(r))
	}
	return "(integer) " + strconv.Itoa(int(r))
}

// bulkReply is a single member.
type bulkReply string

func (r bulkReply) format(raw bool) string {
	if raw {
		return string(r)
	}
	return strconv.Quote(string(r))
}

// textReply is printed verbatim in both modes.
type textReply string

func (r textReply) format(bool) string {
	return strings.TrimRight(string(r), "\n")
}

type errorReply struct {
	err error
}

func (r errorReply) format(raw bool) string {
	msg := "ERR " + r.err.Error()
	if raw {
		return msg
	}
	return "(error) " + msg
}

type arrayReply []reply

func (r arrayReply) format(raw bool) string {
	if len(r) == 0 {
		if raw {
			return ""
		}
		return "(empty array)"
	}
	var b strings.Builder
	width := len(strconv.Itoa(len(r)))
	for i, elem := range r {
		if i > 0 {
			b.WriteByte('\n')
		}
		if !raw {
			idx := strconv.Itoa(i + 1)
			b.WriteString(strings.Repeat(" ", width-len(idx)))
			b.WriteString(idx)
			b.WriteString(") ")
		}
		b.WriteString(elem.format(raw))
	}
	return b.String()
}

func membersReply(members []string) arrayReply {
	r := make(arrayReply, len(members))
	for i, m := range members {
		r[i] = bulkReply(m)
	}
	return r
}
