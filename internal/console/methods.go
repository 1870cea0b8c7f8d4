package console

// Method describes one console method and its parameters.
type Method struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Params      map[string]interface{} `json:"params"`
}

func noParams() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func directionParams(desc string, values ...string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"direction": map[string]interface{}{
				"type":        "string",
				"enum":        values,
				"description": desc,
			},
		},
		"required": []string{"direction"},
	}
}

// MethodDefinitions returns every method the console serves, in the order
// methods/list reports them.
func MethodDefinitions() []Method {
	return []Method{
		// Session
		{Name: "initialize", Description: "Report server name, version and capabilities.", Params: noParams()},
		{Name: "ping", Description: "Liveness check.", Params: noParams()},
		{Name: "methods/list", Description: "List the console methods.", Params: noParams()},
		{Name: "status", Description: "Return the control loop telemetry snapshot: state, counters, last blob and last command.", Params: noParams()},

		// Operator input
		{Name: "tracking/enable", Description: "Enable line tracking. Rate commands are sent every processed frame.", Params: noParams()},
		{Name: "tracking/disable", Description: "Disable line tracking and send one neutral rate command.", Params: noParams()},
		{
			Name:        "speed/adjust",
			Description: "Change the forward speed used while tracking. The result is clamped to 0-100.",
			Params: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"delta": map[string]interface{}{
						"type":        "integer",
						"description": "Signed change. Default +10",
						"default":     10,
					},
				},
			},
		},
		{Name: "move", Description: "Move the vehicle 30 cm.", Params: directionParams("Move direction", "forward", "back", "left", "right", "up", "down")},
		{Name: "rotate", Description: "Rotate the vehicle 20 degrees.", Params: directionParams("Rotation direction", "cw", "ccw")},
		{Name: "takeoff", Description: "Take off.", Params: noParams()},
		{Name: "land", Description: "Land.", Params: noParams()},
		{Name: "quit", Description: "Stop the control loop. The vehicle receives a neutral command and the video stream is turned off.", Params: noParams()},
		{
			Name:        "key",
			Description: "Send a keyboard key: 1 enable, 2 disable, y/h speed up/down, t takeoff, l land, w/s/a/d/r/f move, q/e rotate, esc quit.",
			Params: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"key": map[string]interface{}{
						"type":        "string",
						"description": "Key name",
					},
				},
				"required": []string{"key"},
			},
		},

		// Threshold tuning
		{Name: "threshold/get", Description: "Return the live HSV threshold band and the valid range of each field.", Params: noParams()},
		{
			Name:        "threshold/set",
			Description: "Set one field of the live HSV threshold band. Takes effect on the next frame.",
			Params: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"h_min", "h_max", "s_min", "s_max", "v_min", "v_max"},
						"description": "Band field",
					},
					"value": map[string]interface{}{
						"type":        "integer",
						"description": "New value. Hue 0-179, saturation and value 0-255",
					},
				},
				"required": []string{"name", "value"},
			},
		},

		// Inspection
		{
			Name:        "color/sample",
			Description: "Report RGB, hex and HSV of a pixel in the latest region of interest.",
			Params: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{"type": "integer", "description": "Column in region coordinates"},
					"y": map[string]interface{}{"type": "integer", "description": "Row in region coordinates"},
				},
				"required": []string{"x", "y"},
			},
		},
		{
			Name:        "snapshot",
			Description: "Save the latest annotated region of interest as PNG.",
			Params: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{"type": "string", "description": "Output file path"},
				},
				"required": []string{"path"},
			},
		},
	}
}
