package intent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranconf/enodebd-go/pkg/datamodel"
)

const fullIntent = `{
  "earfcndl": 39150,
  "pci": 260,
  "bandwidth_mhz": 20,
  "tac": 1,
  "mme": {"ip": "10.0.2.1", "port": 36412},
  "cell_reserved": false,
  "ipsec": false,
  "periodic_inform_interval": 60,
  "perf_mgmt": {"enable": true, "upload_interval": 900, "url": "http://stats/upload"},
  "plmns": [
    {"plmnid": "00101"},
    {"plmnid": "310260", "enable": false, "cell_reserved": true}
  ]
}`

func TestBuildFull(t *testing.T) {
	s, err := Build([]byte(fullIntent), 6)
	require.NoError(t, err)

	want := map[datamodel.Key]any{
		datamodel.K(datamodel.EARFCNDL):                   39150,
		datamodel.K(datamodel.EARFCNUL):                   39150,
		datamodel.K(datamodel.Band):                       40,
		datamodel.K(datamodel.PCI):                        260,
		datamodel.K(datamodel.DLBandwidth):                20.0,
		datamodel.K(datamodel.ULBandwidth):                20.0,
		datamodel.K(datamodel.TAC):                        1,
		datamodel.K(datamodel.MMEIP):                      "10.0.2.1",
		datamodel.K(datamodel.MMEPort):                    36412,
		datamodel.K(datamodel.CellReserved):               false,
		datamodel.K(datamodel.IPSecEnable):                false,
		datamodel.K(datamodel.PeriodicInformInterval):     60,
		datamodel.K(datamodel.PerfMgmtEnable):             true,
		datamodel.K(datamodel.PerfMgmtUploadInterval):     900,
		datamodel.K(datamodel.PerfMgmtUploadURL):          "http://stats/upload",
		datamodel.K(datamodel.NumPLMNs):                   2,
		datamodel.Instance(datamodel.PLMN, 1):             true,
		datamodel.Instance(datamodel.PLMNID, 1):           "00101",
		datamodel.Instance(datamodel.PLMNEnable, 1):       true,
		datamodel.Instance(datamodel.PLMNPrimary, 1):      true,
		datamodel.Instance(datamodel.PLMNCellReserved, 1): false,
		datamodel.Instance(datamodel.PLMN, 2):             true,
		datamodel.Instance(datamodel.PLMNID, 2):           "310260",
		datamodel.Instance(datamodel.PLMNEnable, 2):       false,
		datamodel.Instance(datamodel.PLMNPrimary, 2):      false,
		datamodel.Instance(datamodel.PLMNCellReserved, 2): true,
	}

	assert.Equal(t, len(want), s.Len())
	for k, v := range want {
		got, ok := s.Get(k)
		if assert.True(t, ok, "missing %s", k) {
			assert.Equal(t, v, got, "key %s", k)
		}
	}
}

func TestBuildFDDDerivesUplink(t *testing.T) {
	s, err := Build([]byte(`{"earfcndl": 300}`), 6)
	require.NoError(t, err)

	ul, _ := s.Get(datamodel.K(datamodel.EARFCNUL))
	band, _ := s.Get(datamodel.K(datamodel.Band))
	assert.Equal(t, 18300, ul)
	assert.Equal(t, 1, band)
}

func TestBuildDownlinkOnlyBand(t *testing.T) {
	s, err := Build([]byte(`{"earfcndl": 9700}`), 6)
	require.NoError(t, err)

	assert.True(t, s.Has(datamodel.K(datamodel.EARFCNDL)))
	assert.False(t, s.Has(datamodel.K(datamodel.EARFCNUL)))
}

func TestBuildEmpty(t *testing.T) {
	s, err := Build([]byte(`{}`), 6)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	s, err = Build([]byte(`{"pci": null}`), 6)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"malformed", `{"pci": `, ErrInvalidIntent},
		{"not an object", `[1, 2]`, ErrInvalidIntent},
		{"no band", `{"earfcndl": 45590}`, ErrInvalidIntent},
		{"negative earfcn", `{"earfcndl": -1}`, ErrInvalidIntent},
		{"pci out of range", `{"pci": 504}`, ErrInvalidIntent},
		{"fractional tac", `{"tac": 1.5}`, ErrInvalidIntent},
		{"string port", `{"mme": {"port": "36412"}}`, ErrInvalidIntent},
		{"bad bandwidth", `{"bandwidth_mhz": 7}`, ErrInvalidIntent},
		{"bool as string", `{"ipsec": "yes"}`, ErrInvalidIntent},
		{"plmns not array", `{"plmns": {"plmnid": "00101"}}`, ErrInvalidIntent},
		{"plmnid missing", `{"plmns": [{"enable": true}]}`, ErrInvalidIntent},
		{"plmnid not digits", `{"plmns": [{"plmnid": "0010a"}]}`, ErrInvalidIntent},
		{"too many plmns", `{"plmns": [{"plmnid": "00101"}, {"plmnid": "00102"}, {"plmnid": "00103"}]}`, ErrTooManyPLMNs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build([]byte(tt.doc), 2)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cell.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tac": 7}`), 0o600))

	s, err := Load(path, 6)
	require.NoError(t, err)
	tac, _ := s.Get(datamodel.K(datamodel.TAC))
	assert.Equal(t, 7, tac)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"), 6)
	assert.Error(t, err)
}
