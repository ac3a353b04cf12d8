// Package intent turns an operator's cell intent, a small JSON document,
// into the desired configuration snapshot of an eNodeB.
//
// Example document:
//
//	{
//	  "earfcndl": 39150,
//	  "pci": 260,
//	  "bandwidth_mhz": 20,
//	  "tac": 1,
//	  "mme": {"ip": "10.0.2.1", "port": 36412},
//	  "cell_reserved": false,
//	  "plmns": [{"plmnid": "00101", "primary": true}],
//	  "periodic_inform_interval": 60,
//	  "perf_mgmt": {"enable": true, "upload_interval": 900, "url": "http://stats/upload"}
//	}
//
// Every field is optional; omitted fields are left to the device.
package intent
