package main

import (
	"fmt"
	"strings"
)

// RunBatch executes the text of a .BAT file: a GOTO/CALL/IF/FOR
// subset where lines run top to bottom, a line starting with ':'
// defines a label GOTO can jump to, and %1..%9 substitute the
// caller's arguments before each line runs.
func (sh *Shell) RunBatch(text string, args []string) error {
	lines := strings.Split(text, "\n")
	labels := map[string]int{}
	for i, l := range lines {
		l = strings.TrimSpace(l)
		if strings.HasPrefix(l, ":") {
			labels[strings.ToUpper(strings.TrimPrefix(l, ":"))] = i
		}
	}

	for pc := 0; pc < len(lines) && !sh.quit; pc++ {
		line := strings.TrimSpace(lines[pc])
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		line = substituteArgs(line, args)

		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "GOTO "):
			target := strings.ToUpper(strings.TrimSpace(line[5:]))
			target = strings.TrimPrefix(target, ":")
			if idx, ok := labels[target]; ok {
				pc = idx
			}
			continue
		case strings.HasPrefix(upper, "CALL "):
			if err := sh.Execute(line[5:]); err != nil {
				return err
			}
			continue
		case strings.HasPrefix(upper, "IF "):
			if cmd, ok := evalIf(line[3:], sh.fileExists); ok {
				if strings.HasPrefix(strings.ToUpper(cmd), "GOTO ") {
					target := strings.ToUpper(strings.TrimSpace(cmd[5:]))
					if idx, ok := labels[strings.TrimPrefix(target, ":")]; ok {
						pc = idx
					}
					continue
				}
				if err := sh.Execute(cmd); err != nil {
					return err
				}
			}
			continue
		case strings.HasPrefix(upper, "FOR "):
			if err := sh.runFor(line[4:]); err != nil {
				return err
			}
			continue
		}
		if err := sh.Execute(line); err != nil {
			return err
		}
	}
	return nil
}

func substituteArgs(line string, args []string) string {
	for i := 9; i >= 1; i-- {
		val := ""
		if i <= len(args) {
			val = args[i-1]
		}
		line = strings.ReplaceAll(line, fmt.Sprintf("%%%d", i), val)
	}
	return line
}

// evalIf handles the four supported IF forms: "EXIST file cmd",
// "NOT EXIST file cmd", "a==b cmd" and "NOT a==b cmd".
func evalIf(rest string, exists func(path string) bool) (cmd string, run bool) {
	rest = strings.TrimSpace(rest)
	negate := false
	if strings.HasPrefix(strings.ToUpper(rest), "NOT ") {
		negate = true
		rest = strings.TrimSpace(rest[4:])
	}

	var cond bool
	var tail string
	switch {
	case strings.HasPrefix(strings.ToUpper(rest), "EXIST "):
		rest = rest[6:]
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return "", false
		}
		path := fields[0]
		tail = strings.TrimSpace(strings.TrimPrefix(rest, path))
		cond = exists(path)
	default:
		if i := strings.Index(rest, "=="); i >= 0 {
			lhs := strings.TrimSpace(rest[:i])
			after := rest[i+2:]
			fields := strings.Fields(after)
			rhs := ""
			if len(fields) > 0 {
				rhs = fields[0]
				tail = strings.TrimSpace(strings.TrimPrefix(after, rhs))
			}
			cond = lhs == rhs
		} else {
			return "", false
		}
	}

	if negate {
		cond = !cond
	}
	return tail, cond
}

// runFor implements FOR %x IN (set) DO command: set is a
// parenthesised, whitespace/comma separated literal token list (no
// wildcard expansion), run once per token with %x bound to it.
func (sh *Shell) runFor(rest string) error {
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "%") {
		return nil
	}
	sp := strings.IndexByte(rest, ' ')
	if sp < 0 {
		return nil
	}
	varName := rest[:sp]
	rest = strings.TrimSpace(rest[sp+1:])

	upper := strings.ToUpper(rest)
	if !strings.HasPrefix(upper, "IN ") {
		return nil
	}
	rest = strings.TrimSpace(rest[3:])
	open, close := strings.IndexByte(rest, '('), strings.IndexByte(rest, ')')
	if open < 0 || close < 0 || close < open {
		return nil
	}
	set := rest[open+1 : close]
	tokens := strings.FieldsFunc(set, func(r rune) bool { return r == ' ' || r == ',' })

	doRest := strings.TrimSpace(rest[close+1:])
	upperDo := strings.ToUpper(doRest)
	if !strings.HasPrefix(upperDo, "DO ") {
		return nil
	}
	template := doRest[3:]

	for _, tok := range tokens {
		cmd := strings.ReplaceAll(template, varName, tok)
		if err := sh.Execute(cmd); err != nil {
			return err
		}
	}
	return nil
}
