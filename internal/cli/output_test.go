package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutput_Table(t *testing.T) {
	var out, errOut bytes.Buffer
	o := newOutputTo(false, &out, &errOut)

	o.Print([]string{"CODE", "QTY"}, [][]string{{"40.1", "10"}, {"40.1.1", "4"}}, nil)

	assert.Equal(t, "CODE    QTY\n----    ---\n40.1    10\n40.1.1  4\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestOutput_EmptyRows(t *testing.T) {
	var out, errOut bytes.Buffer
	o := newOutputTo(false, &out, &errOut)

	o.Print([]string{"CODE"}, nil, nil)

	assert.Empty(t, out.String())
	assert.Equal(t, "(no rows)\n", errOut.String())
}

func TestOutput_JSONMode(t *testing.T) {
	var out, errOut bytes.Buffer
	o := newOutputTo(true, &out, &errOut)

	o.Print([]string{"CODE"}, [][]string{{"40.1"}}, map[string]int{"quantity": 10})
	o.Details([][2]string{{"Status", "ACTIVE"}}, map[string]string{"status": "ACTIVE"})

	assert.Equal(t, "{\n  \"quantity\": 10\n}\n{\n  \"status\": \"ACTIVE\"\n}\n", out.String())
}

func TestOutput_Details(t *testing.T) {
	var out, errOut bytes.Buffer
	o := newOutputTo(false, &out, &errOut)

	o.Details([][2]string{{"Status", "SPLIT"}, {"Workshop", "-"}}, nil)

	assert.Equal(t, "Status:   SPLIT\nWorkshop: -\n", out.String())
}
