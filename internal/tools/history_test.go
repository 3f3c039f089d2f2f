package tools

import (
	"testing"
)

func TestActivationHistory(t *testing.T) {
	f := newFixture(t)
	activate := f.tool(t, OpActivateAgent)
	call(t, activate, map[string]interface{}{"agentName": "dev"})
	call(t, activate, map[string]interface{}{"agentName": "pm"})
	call(t, activate, map[string]interface{}{"agentName": "dev"})

	tool := f.tool(t, OpActivationHistory)

	var all historyResult
	decodeData(t, call(t, tool, nil), &all)
	if all.Stats.TotalActivations != 3 || len(all.Recent) != 3 {
		t.Errorf("history = %+v", all)
	}
	if all.Recent[0].Agent != "dev" {
		t.Errorf("newest first: got %s", all.Recent[0].Agent)
	}

	var dev historyResult
	decodeData(t, call(t, tool, map[string]interface{}{"agent": "dev", "limit": float64(1)}), &dev)
	if len(dev.Recent) != 1 || dev.Recent[0].Agent != "dev" {
		t.Errorf("filtered = %+v", dev.Recent)
	}

	callFail(t, tool, map[string]interface{}{"limit": float64(-5)}, CodeInvalidInput)
}
