package jsonutil_test

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/drblury/pingcheck/jsonutil"
)

func Example() {
	type pingResult struct {
		Driver string `json:"driver"`
		OK     bool   `json:"ok"`
		Target string `json:"target"`
	}

	result := pingResult{
		Driver: "mongodb",
		OK:     true,
		Target: "mongodb://db.internal:27017",
	}

	data, _ := jsonutil.Marshal(result)
	fmt.Println(string(data))

	var decoded pingResult
	_ = jsonutil.Unmarshal(data, &decoded)
	fmt.Println(decoded.OK)

	buf := &bytes.Buffer{}
	_ = jsonutil.Encode(buf, result)

	var streamed pingResult
	_ = jsonutil.Decode(buf, &streamed)
	fmt.Println(streamed.Driver)

	// Output:
	// {"driver":"mongodb","ok":true,"target":"mongodb://db.internal:27017"}
	// true
	// mongodb
}

func ExampleMarshalIndent() {
	type failure struct {
		Kind    string `json:"kind"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}

	payload := failure{
		Kind:    "authentication",
		Code:    "18",
		Message: "Authentication failed.",
	}

	data, err := jsonutil.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Println("marshal error:", err)
		return
	}

	fmt.Println(strings.TrimSpace(string(data)))

	// Output:
	// {
	//   "kind": "authentication",
	//   "code": "18",
	//   "message": "Authentication failed."
	// }
}
