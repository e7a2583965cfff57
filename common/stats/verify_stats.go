package stats

// Rule-based assertions against a stats receiver's current snapshot,
// used by tests that want to check a handful of counters/gauges
// without hand-decoding the rendered JSON.

import (
	"bytes"
	"fmt"
	"testing"
)

type RuleChecker struct {
	name    string
	checker func(interface{}, interface{}) bool
}

func nilCheck(a, b interface{}) (nilFound, eqValues bool) {
	nilFound = false
	if b == nil && a == nil {
		nilFound = true
		eqValues = true
	} else if b == nil || a == nil {
		nilFound = true
		eqValues = false
	}
	return
}

// errors if a is not int64, returns true if a == b
func int64EqTest(a, b interface{}) bool {
	if nilFound, eqValue := nilCheck(a, b); nilFound {
		return eqValue
	}
	aint := a.(int64)
	bint := b.(int)
	return aint == int64(bint)
}

var Int64EqTest = RuleChecker{name: "int64EqTest", checker: int64EqTest}

func doesNotExistTest(a, b interface{}) bool {
	return a == nil
}

var DoesNotExistTest = RuleChecker{name: "notExistCheck", checker: doesNotExistTest}

// Rule defines the condition checker to use to validate the measurement.
// Each Checker(a, b) implementation expects a to be the 'got' value and
// b to be the 'expected' value.
type Rule struct {
	Checker RuleChecker
	Value   interface{}
}

// Snapshot returns the current value of every registered counter and
// gauge on stat, keyed by scoped name. Returns an empty map for a nil
// receiver such as NilStatsReceiver().
func Snapshot(stat StatsReceiver) map[string]interface{} {
	d, ok := stat.(*defaultStatsReceiver)
	if !ok {
		return map[string]interface{}{}
	}
	return d.snapshot()
}

// VerifyStats checks that stat's current snapshot has a value for each
// key in contains, and that the value satisfies the associated rule.
func VerifyStats(tag string, stat StatsReceiver, t *testing.T, contains map[string]Rule) {
	snap := Snapshot(stat)
	err := false
	var msg bytes.Buffer
	msg.WriteString(tag)
	msg.WriteString(": stats assertion failed:\n")

	for key, rule := range contains {
		gotValue := snap[key]
		if !rule.Checker.checker(gotValue, rule.Value) {
			err = true
			if rule.Checker.name == DoesNotExistTest.name {
				msg.WriteString(fmt.Sprintf("%s: found stat entry when there should not be one\n", key))
			} else {
				msg.WriteString(fmt.Sprintf("%s: got %v, expected to pass %s with %v\n", key, gotValue, rule.Checker.name, rule.Value))
			}
		}
	}
	if err {
		t.Error(msg.String())
		PPrintStats(tag, snap)
	}
}

func PPrintStats(tag string, snap map[string]interface{}) {
	fmt.Printf("%s: stats snapshot:\n", tag)
	for k, v := range snap {
		fmt.Printf("  %s = %v\n", k, v)
	}
}
