// Computes which queue alarms to create and which to delete
package qadiff

import (
	"sort"
	"strings"

	"github.com/function61/lambda-queuealarms/pkg/qaplan"
)

const (
	DeadLetterThreshold = 1
)

var deadLetterSuffixes = []string{"-dlq", "-dead-letter", "_dlq"}

// diffs queue inventory against existing alarms. alarms is expected to contain only
// names that end in suffix (that's how they were listed). duplicates in either input
// are harmless. output lists are sorted by name for reproducible plans.
func Diff(
	region string,
	queues []string,
	alarms []string,
	suffix string,
	defaultThreshold int,
) *qaplan.Plan {
	queueSet := toSet(queues)
	alarmSet := toSet(alarms)

	creates := []qaplan.CreateAlarm{}

	for _, queue := range sortedKeys(queueSet) {
		expected := AlarmNameFor(queue, suffix)

		if _, has := alarmSet[expected]; has {
			continue
		}

		creates = append(creates, qaplan.CreateAlarm{
			Queue:     queue,
			Alarm:     expected,
			Threshold: Classify(queue, defaultThreshold),
		})
	}

	deletes := []qaplan.DeleteAlarm{}

	for _, alarm := range sortedKeys(alarmSet) {
		if _, has := queueSet[QueueNameFor(alarm, suffix)]; has {
			continue
		}

		deletes = append(deletes, qaplan.DeleteAlarm{Alarm: alarm})
	}

	return qaplan.New(region, suffix, creates, deletes)
}

// dead-letter queues get the stricter threshold
func Classify(queue string, defaultThreshold int) int {
	if IsDeadLetterQueue(queue) {
		return DeadLetterThreshold
	}

	return defaultThreshold
}

func IsDeadLetterQueue(queue string) bool {
	for _, suffix := range deadLetterSuffixes {
		if strings.HasSuffix(queue, suffix) {
			return true
		}
	}

	return false
}

func AlarmNameFor(queue string, suffix string) string {
	return queue + suffix
}

func QueueNameFor(alarm string, suffix string) string {
	return strings.TrimSuffix(alarm, suffix)
}

// "https://sqs.eu-west-1.amazonaws.com/123456789012/orders" => "orders"
func QueueNameFromUrl(url string) string {
	return url[strings.LastIndex(url, "/")+1:]
}

// queues whose own name ends in the alarm suffix. their name is indistinguishable
// from an alarm name, so an alarm named after them could later look orphaned.
func AmbiguousQueues(queues []string, suffix string) []string {
	ambiguous := []string{}

	if suffix == "" {
		return ambiguous
	}

	for _, queue := range sortedKeys(toSet(queues)) {
		if strings.HasSuffix(queue, suffix) {
			ambiguous = append(ambiguous, queue)
		}
	}

	return ambiguous
}

func toSet(items []string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, item := range items {
		set[item] = struct{}{}
	}

	return set
}

func sortedKeys(set map[string]struct{}) []string {
	keys := []string{}
	for key := range set {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
