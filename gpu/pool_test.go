package gpu

import "testing"

func TestPoolGetOnEmptyMisses(t *testing.T) {
	p := NewPool[DeviceKey, *DeviceBuffer]()
	_, ok := p.Get(NewDeviceKey(4, 64, 32))
	if ok {
		t.Fatal("Get on empty pool returned ok = true")
	}
}

func TestPoolRoundTrip(t *testing.T) {
	p := NewPool[DeviceKey, *DeviceBuffer]()
	key := NewDeviceKey(4, 64, 32)
	buf := &DeviceBuffer{Width: 64, Height: 32, Stride: 4}

	p.Put(key, buf)
	got, ok := p.Get(key)
	if !ok {
		t.Fatal("Get after Put returned ok = false")
	}
	if got != buf {
		t.Fatal("Get returned a different buffer than was Put")
	}

	if _, ok := p.Get(key); ok {
		t.Fatal("Get after the only entry was popped returned ok = true")
	}
}

func TestPoolLIFOOrder(t *testing.T) {
	p := NewPool[DeviceKey, *DeviceBuffer]()
	key := NewDeviceKey(4, 16, 16)
	first := &DeviceBuffer{Width: 16, Height: 16, Stride: 4}
	second := &DeviceBuffer{Width: 16, Height: 16, Stride: 4}

	p.Put(key, first)
	p.Put(key, second)

	got, _ := p.Get(key)
	if got != second {
		t.Fatal("Get did not return the most recently Put buffer")
	}
}

func TestPoolClearEmptiesAllBuckets(t *testing.T) {
	p := NewPool[DeviceKey, *DeviceBuffer]()
	key := NewDeviceKey(4, 8, 8)
	p.Put(key, &DeviceBuffer{Width: 8, Height: 8, Stride: 4})

	p.Clear()

	if _, ok := p.Get(key); ok {
		t.Fatal("Get after Clear returned ok = true")
	}
}

func TestDeviceKeyPacksWidthHeightDistinctly(t *testing.T) {
	a := NewDeviceKey(4, 64, 32)
	b := NewDeviceKey(4, 32, 64)
	if a == b {
		t.Fatal("NewDeviceKey produced the same key for transposed dimensions")
	}
}
