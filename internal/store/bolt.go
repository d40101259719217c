package store

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketDevices = []byte("devices")

// BoltStore implements Store using BoltDB. Devices are stored as JSON keyed
// by IEEE address, so listings come back in address order.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens or creates a BoltDB database.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDevices)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func devices(tx *bolt.Tx) (*bolt.Bucket, error) {
	b := tx.Bucket(bucketDevices)
	if b == nil {
		return nil, fmt.Errorf("bucket %q not found", bucketDevices)
	}
	return b, nil
}

func decodeDevice(ieee string, data []byte) (*Device, error) {
	if data == nil {
		return nil, fmt.Errorf("device %s: %w", ieee, ErrNotFound)
	}
	var dev Device
	if err := json.Unmarshal(data, &dev); err != nil {
		return nil, fmt.Errorf("decode device %s: %w", ieee, err)
	}
	return &dev, nil
}

func putDevice(b *bolt.Bucket, dev *Device) error {
	data, err := json.Marshal(dev)
	if err != nil {
		return fmt.Errorf("encode device %s: %w", dev.IEEEAddress, err)
	}
	return b.Put([]byte(dev.IEEEAddress), data)
}

func (s *BoltStore) SaveDevice(dev *Device) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := devices(tx)
		if err != nil {
			return err
		}
		return putDevice(b, dev)
	})
}

func (s *BoltStore) GetDevice(ieee string) (*Device, error) {
	var dev *Device
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := devices(tx)
		if err != nil {
			return err
		}
		dev, err = decodeDevice(ieee, b.Get([]byte(ieee)))
		return err
	})
	return dev, err
}

// DeleteDevice removes a device. Deleting an unknown device is not an error.
func (s *BoltStore) DeleteDevice(ieee string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := devices(tx)
		if err != nil {
			return err
		}
		return b.Delete([]byte(ieee))
	})
}

func (s *BoltStore) ListDevices() ([]*Device, error) {
	return s.listDevices(func(*Device) bool { return true })
}

// ListDevicesWithQuirk returns the devices the given quirk was applied to.
// An empty quirkID selects devices without a quirk.
func (s *BoltStore) ListDevicesWithQuirk(quirkID string) ([]*Device, error) {
	return s.listDevices(func(d *Device) bool { return d.QuirkID == quirkID })
}

func (s *BoltStore) listDevices(keep func(*Device) bool) ([]*Device, error) {
	var out []*Device
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := devices(tx)
		if err != nil {
			return err
		}
		out = make([]*Device, 0, b.Stats().KeyN)
		return b.ForEach(func(k, v []byte) error {
			dev, err := decodeDevice(string(k), v)
			if err != nil {
				return err
			}
			if keep(dev) {
				out = append(out, dev)
			}
			return nil
		})
	})
	return out, err
}

// UpdateDevice applies fn to the stored device inside one write transaction.
// Nothing is written when fn fails.
func (s *BoltStore) UpdateDevice(ieee string, fn func(dev *Device) error) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := devices(tx)
		if err != nil {
			return err
		}
		dev, err := decodeDevice(ieee, b.Get([]byte(ieee)))
		if err != nil {
			return err
		}
		if err := fn(dev); err != nil {
			return err
		}
		dev.IEEEAddress = ieee
		return putDevice(b, dev)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
