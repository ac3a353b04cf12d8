package discovery

import (
	"fmt"
	"sort"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeACSTXT creates the TXT records for an ACS advertisement.
func EncodeACSTXT(info *ACSInfo) TXTRecordMap {
	txt := TXTRecordMap{
		TXTKeyVersion: TXTVersion,
		TXTKeyPath:    info.Path,
	}
	if txt[TXTKeyPath] == "" {
		txt[TXTKeyPath] = DefaultPath
	}
	if info.Version != "" {
		txt[TXTKeyAgentVer] = info.Version
	}
	if info.TLS {
		txt[TXTKeyTLS] = "1"
	}
	return txt
}

// DecodeACSTXT parses the TXT records of an ACS advertisement. Instance
// name and port are not part of the TXT data and are left empty.
func DecodeACSTXT(txt TXTRecordMap) (*ACSInfo, error) {
	path, ok := txt[TXTKeyPath]
	if !ok || path == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyPath)
	}
	return &ACSInfo{
		Path:    path,
		Version: txt[TXTKeyAgentVer],
		TLS:     txt[TXTKeyTLS] == "1",
	}, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to sorted "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// StringsToTXTRecords parses "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		k, v, found := strings.Cut(s, "=")
		if k == "" {
			continue
		}
		if !found {
			// Key without value (boolean flag)
			v = ""
		}
		txt[k] = v
	}
	return txt
}

// InstanceName builds a valid instance label from a host name.
func InstanceName(host string) string {
	name := "enodebd-" + host
	if host == "" {
		name = "enodebd"
	}
	if len(name) > MaxInstanceNameLen {
		name = name[:MaxInstanceNameLen]
	}
	return name
}
