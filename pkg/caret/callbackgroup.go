package caret

import (
	"fmt"
	"hash/fnv"

	"github.com/okanda/rosviz/pkg/rosgraph"
)

// maxCallbackDetails caps the callback list attached per callback group.
// Nodes with enormous callback counts (aggregators, diagnostics) would
// otherwise dominate the annotation payload.
const maxCallbackDetails = 50

// executorInfo is the resolved executor assignment for one callback group.
type executorInfo struct {
	name  string
	color [3]uint8
}

// extend attaches callback group annotations to every graph node present in
// the architecture. Nodes without callback group data are left untouched, as
// are callback groups not assigned to any executor.
func extend(arch *architecture, g *rosgraph.Graph) {
	byGroup := executorsByCallbackGroup(arch)

	for _, archNode := range arch.Nodes {
		node, ok := g.Node(archNode.NodeName)
		if !ok {
			continue
		}
		node.CallbackGroups = callbackGroups(archNode, byGroup)
	}
}

// executorsByCallbackGroup maps each callback group name to its executor.
// Executors owning more than one callback group get a highlight color derived
// from the executor name, so shared executors are visually identical across
// runs; single-group executors stay white.
func executorsByCallbackGroup(arch *architecture) map[string]executorInfo {
	byGroup := make(map[string]executorInfo)
	for _, exec := range arch.Executors {
		execType := exec.ExecutorType
		if len(execType) > 6 {
			execType = execType[:6]
		}
		info := executorInfo{
			name:  exec.ExecutorName + ", " + execType,
			color: [3]uint8{255, 255, 255},
		}
		if len(exec.CallbackGroupNames) > 1 {
			info.color = executorColor(exec.ExecutorName)
		}
		for _, groupName := range exec.CallbackGroupNames {
			byGroup[groupName] = info
		}
	}
	return byGroup
}

// executorColor derives a stable highlight color from the executor name.
// Red and green stay in [96,255] and blue in [0,128], keeping the highlight
// bright against the default node palette.
func executorColor(name string) [3]uint8 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	sum := h.Sum32()
	return [3]uint8{
		uint8(96 + (sum>>16)%160),
		uint8(96 + (sum>>8)%160),
		uint8(sum % 129),
	}
}

func callbackGroups(node archNode, byGroup map[string]executorInfo) []rosgraph.CallbackGroup {
	if len(node.CallbackGroups) == 0 || len(node.Callbacks) == 0 {
		return nil
	}

	var groups []rosgraph.CallbackGroup
	for _, cbg := range node.CallbackGroups {
		info, assigned := byGroup[cbg.CallbackGroupName]
		if !assigned {
			// Callback groups without an executor are dormant; skip them.
			continue
		}
		group := rosgraph.CallbackGroup{
			Name:     cbg.CallbackGroupName,
			Type:     cbg.CallbackGroupType,
			Executor: info.name,
			Color:    info.color,
		}
		for _, cbName := range cbg.CallbackNames {
			detail, ok := callbackDetail(node.Callbacks, cbName)
			if !ok {
				continue
			}
			if len(group.Callbacks) < maxCallbackDetails {
				group.Callbacks = append(group.Callbacks, detail)
			} else if len(group.Callbacks) == maxCallbackDetails {
				group.Callbacks = append(group.Callbacks, rosgraph.CallbackDetail{
					Name:        "Too many callbacks",
					Description: "Too many callbacks",
				})
			}
		}
		groups = append(groups, group)
	}
	return groups
}

func callbackDetail(callbacks []archCallback, name string) (rosgraph.CallbackDetail, bool) {
	for _, cb := range callbacks {
		if cb.CallbackName != name {
			continue
		}
		detail := rosgraph.CallbackDetail{Name: name}
		switch cb.CallbackType {
		case "subscription_callback":
			detail.Type = rosgraph.CallbackSubscription
			detail.Description = cb.TopicName
		case "timer_callback":
			detail.Type = rosgraph.CallbackTimer
			detail.Description = fmt.Sprintf("%gms", float64(cb.PeriodNS)/1e6)
		default:
			detail.Type = rosgraph.CallbackType(cb.CallbackType)
		}
		return detail, true
	}
	return rosgraph.CallbackDetail{}, false
}
