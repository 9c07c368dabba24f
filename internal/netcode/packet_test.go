package netcode

import "testing"

func TestHeaderRoundTrip(t *testing.T) {
	cases := []struct {
		typ PacketType
		seq uint64
	}{
		{PacketConnectionRequest, 0},
		{PacketChallenge, 1},
		{PacketPayload, 255},
		{PacketPayload, 256},
		{PacketKeepAlive, 0xFFFFFFFF},
		{PacketDisconnect, 0x0102030405060708},
	}

	for _, tc := range cases {
		var buf []byte
		buf = EncodeHeader(buf, tc.typ, tc.seq)
		gotTyp, gotSeq, bodyOff, err := DecodeHeader(buf)
		if err != nil {
			t.Fatalf("DecodeHeader(%v,%d): %v", tc.typ, tc.seq, err)
		}
		if gotTyp != tc.typ || gotSeq != tc.seq {
			t.Errorf("got (%v,%d), want (%v,%d)", gotTyp, gotSeq, tc.typ, tc.seq)
		}
		if bodyOff != len(buf) {
			t.Errorf("bodyOff = %d, want %d", bodyOff, len(buf))
		}
	}
}

func TestDecodeHeaderRejectsEmpty(t *testing.T) {
	if _, _, _, err := DecodeHeader(nil); err == nil {
		t.Fatal("DecodeHeader(nil) should error")
	}
}

func TestPacketCryptoSealOpenRoundTrip(t *testing.T) {
	send := make([]byte, KeySize)
	recv := make([]byte, KeySize)
	for i := range send {
		send[i] = byte(i)
		recv[i] = byte(255 - i)
	}

	a, err := NewPacketCrypto(send, recv)
	if err != nil {
		t.Fatalf("NewPacketCrypto: %v", err)
	}
	b, err := NewPacketCrypto(recv, send)
	if err != nil {
		t.Fatalf("NewPacketCrypto: %v", err)
	}

	ad := AssociatedData(PrefixByte(PacketPayload, 5), 1)
	ciphertext, err := a.Seal(5, ad, []byte("move forward"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	plaintext, err := b.Open(5, ad, ciphertext)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if string(plaintext) != "move forward" {
		t.Errorf("plaintext = %q, want %q", plaintext, "move forward")
	}
}

func TestPacketCryptoRejectsTamperedAssociatedData(t *testing.T) {
	send := make([]byte, KeySize)
	recv := make([]byte, KeySize)
	a, err := NewPacketCrypto(send, recv)
	if err != nil {
		t.Fatalf("NewPacketCrypto: %v", err)
	}
	b, err := NewPacketCrypto(recv, send)
	if err != nil {
		t.Fatalf("NewPacketCrypto: %v", err)
	}

	ciphertext, err := a.Seal(1, AssociatedData(PrefixByte(PacketPayload, 1), 1), []byte("hi"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := b.Open(1, AssociatedData(PrefixByte(PacketPayload, 1), 2), ciphertext); err == nil {
		t.Fatal("Open with mismatched protocol id in associated data should fail")
	}
}
