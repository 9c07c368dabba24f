package wire

import "testing"

func TestReaderWriterRoundTrip(t *testing.T) {
	w := NewWriter(32)
	w.WriteByte(0xAB)
	w.WriteInt8(-5)
	w.WriteUint16(0xBEEF)
	w.WriteUint32(0xCAFEBABE)
	w.WriteInt32(-123456)
	w.WriteUint64(0x0102030405060708)
	w.WriteFloat32(3.14159)
	if err := w.WriteString("hello, realm"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}

	r := NewReader(w.Bytes())

	if b, err := r.ReadByte(); err != nil || b != 0xAB {
		t.Fatalf("ReadByte = %v, %v", b, err)
	}
	if v, err := r.ReadInt8(); err != nil || v != -5 {
		t.Fatalf("ReadInt8 = %v, %v", v, err)
	}
	if v, err := r.ReadUint16(); err != nil || v != 0xBEEF {
		t.Fatalf("ReadUint16 = %v, %v", v, err)
	}
	if v, err := r.ReadUint32(); err != nil || v != 0xCAFEBABE {
		t.Fatalf("ReadUint32 = %v, %v", v, err)
	}
	if v, err := r.ReadInt32(); err != nil || v != -123456 {
		t.Fatalf("ReadInt32 = %v, %v", v, err)
	}
	if v, err := r.ReadUint64(); err != nil || v != 0x0102030405060708 {
		t.Fatalf("ReadUint64 = %v, %v", v, err)
	}
	if v, err := r.ReadFloat32(); err != nil || v != float32(3.14159) {
		t.Fatalf("ReadFloat32 = %v, %v", v, err)
	}
	if s, err := r.ReadString(); err != nil || s != "hello, realm" {
		t.Fatalf("ReadString = %q, %v", s, err)
	}
	if r.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", r.Remaining())
	}
}

func TestReadShortBufferIsTyped(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.ReadUint32(); err == nil {
		t.Fatal("ReadUint32 on truncated buffer should error")
	}
}

func TestWriteStringRejectsOversized(t *testing.T) {
	w := NewWriter(4)
	huge := make([]byte, MaxStringLen+1)
	if err := w.WriteString(string(huge)); err == nil {
		t.Fatal("WriteString should reject a string longer than MaxStringLen")
	}
}

func TestReadStringRejectsOversizedLengthPrefix(t *testing.T) {
	w := NewWriter(4)
	w.WriteUint16(uint16(MaxStringLen + 1))
	r := NewReader(w.Bytes())
	if _, err := r.ReadString(); err == nil {
		t.Fatal("ReadString should reject a length prefix exceeding MaxStringLen")
	}
}

func TestReadBytesAliasesBackingArray(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	r := NewReader(data)
	got, err := r.ReadBytes(4)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	got[0] = 99
	if data[0] != 99 {
		t.Error("ReadBytes should alias the backing array, not copy it")
	}
}
