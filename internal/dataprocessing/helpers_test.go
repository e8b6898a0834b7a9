package dataprocessing

import (
	"evedata/internal/container"
)

// Helpers for constructing synthetic measurement trees in tests.

func posCounterColumn(values ...int64) container.PayloadColumn {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return container.PayloadColumn{Name: "PosCounter", Values: cells}
}

func floatColumn(name string, values ...float64) container.PayloadColumn {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return container.PayloadColumn{Name: name, Values: cells}
}

func intColumn(name string, values ...int64) container.PayloadColumn {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return container.PayloadColumn{Name: name, Values: cells}
}

func flatLeaf(name string, attrs container.Attributes, cols ...container.PayloadColumn) *container.Node {
	return container.NewLeaf(name, attrs, &container.Payload{Columns: cols})
}

func channelAttrs(xmlID, displayName, unit, deviceType string) container.Attributes {
	attrs := container.Attributes{}
	if xmlID != "" {
		attrs["XML-ID"] = []string{xmlID}
	}
	if displayName != "" {
		attrs["Name"] = []string{displayName}
	}
	if unit != "" {
		attrs["unit"] = []string{unit}
	}
	if deviceType != "" {
		attrs["DeviceType"] = []string{deviceType}
	}
	return attrs
}

func walkNode(node *container.Node) (*GroupRecord, error) {
	return NewWalker(nil).Walk(node)
}
