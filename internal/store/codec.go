package store

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// getJSON decodes bucket/key into dest. Returns false when the key is absent.
func getJSON(tx Tx, bucket, key string, dest interface{}) (bool, error) {
	data, err := tx.Get(bucket, key)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", bucket, key, err)
	}
	return true, nil
}

func putJSON(tx Tx, bucket, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", bucket, key, err)
	}
	return tx.Put(bucket, key, data)
}

func idKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func decode(data []byte, dest interface{}) error {
	return json.Unmarshal(data, dest)
}
