package v1_test

import (
	"encoding/json"
	"testing"

	v1 "github.com/USA-RedDragon/arm-panel/internal/server/apimodels/v1"
)

func TestMovementRequestAcceptsNumbersAndStrings(t *testing.T) {
	t.Parallel()
	var req v1.POSTMovementRequest
	body := `{"joints":[0,"0",90.5,"abc",null,-1e2],"gripper":"350"}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	form := req.Form()
	want := [6]string{"0", "0", "90.5", "abc", "", "-1e2"}
	if form.Joints != want {
		t.Fatalf("unexpected joints %q", form.Joints)
	}
	if form.Gripper != "350" {
		t.Fatalf("unexpected gripper %q", form.Gripper)
	}
}

func TestMovementRequestRejectsObjects(t *testing.T) {
	t.Parallel()
	var req v1.POSTMovementRequest
	if err := json.Unmarshal([]byte(`{"joints":[{},0,0,0,0,0]}`), &req); err == nil {
		t.Fatalf("expected an error for a non-scalar joint")
	}
}
