package indexer

import (
	"fmt"
	"strings"

	"crowdfundChain/internal/contract"
)

// ParseEvents validates event names against the contract ABI.
// An empty input selects every event.
func ParseEvents(inputs []string) (map[string]struct{}, error) {
	parsed, err := contract.CrowdFundABI()
	if err != nil {
		return nil, err
	}

	events := make(map[string]struct{})
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		found := false
		for name := range parsed.Events {
			if strings.EqualFold(name, input) {
				events[name] = struct{}{}
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown event: %s", input)
		}
	}
	if len(events) == 0 {
		for name := range accountArg {
			events[name] = struct{}{}
		}
	}
	return events, nil
}
