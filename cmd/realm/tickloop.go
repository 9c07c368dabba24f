package main

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/embervale/realm/internal/config"
	"github.com/embervale/realm/internal/db"
	"github.com/embervale/realm/internal/netcode"
	"github.com/embervale/realm/internal/realm"
	"github.com/embervale/realm/internal/telemetry"
	"github.com/embervale/realm/internal/wire"
)

const inboundQueueCapacity = 4096

type inboundPacket struct {
	addr net.Addr
	data []byte
}

// lootRoller mirrors the unexported interface realm.Tick accepts; kept
// here only to give tickLoop a field type, since *realm.NewRandLootRoller
// already satisfies it structurally.
type lootRoller interface {
	Float64() float64
	IntRange(min, max int32) int32
}

// tickLoop owns the UDP socket's read side and the fixed-rate simulation
// clock; everything that mutates realm.World happens on the goroutine
// running (*tickLoop).run, matching the world's single-writer invariant.
type tickLoop struct {
	cfg        config.Realm
	pc         net.PacketConn
	netServer  *netcode.Server
	characters *db.CharacterRepository
	world      *realm.World
	rng        lootRoller
	metrics    *telemetry.Metrics
	log        *slog.Logger

	inbound chan inboundPacket
}

// readLoop blocks on the UDP socket and forwards every datagram to run's
// select loop; it never touches World directly.
func (l *tickLoop) readLoop(ctx context.Context) error {
	if l.inbound == nil {
		l.inbound = make(chan inboundPacket, inboundQueueCapacity)
	}
	buf := make([]byte, netcode.MaxPacketSize)
	for {
		if err := l.pc.SetReadDeadline(time.Now().Add(500 * time.Millisecond)); err != nil {
			return err
		}
		n, addr, err := l.pc.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			l.log.Warn("realm: udp read error", "err", err)
			continue
		}
		data := make([]byte, n)
		copy(data, buf[:n])

		select {
		case l.inbound <- inboundPacket{addr: addr, data: data}:
		case <-ctx.Done():
			return nil
		default:
			l.log.Warn("realm: dropping inbound packet, queue full", "addr", addr)
		}
	}
}

// run drives the fixed-rate tick loop (spec §4.4, §9 Open Question a):
// drain whatever arrived since the last tick, run the simulation exactly
// once, then flush every resulting OutgoingMessage back over the socket.
func (l *tickLoop) run(ctx context.Context) error {
	if l.inbound == nil {
		l.inbound = make(chan inboundPacket, inboundQueueCapacity)
	}
	interval := time.Second / time.Duration(l.cfg.TickHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var deliveries []netcode.Delivery
	var connects []realm.ConnectEvent
	var disconnects []realm.DisconnectEvent

	for {
		select {
		case <-ctx.Done():
			return nil

		case pkt := <-l.inbound:
			out, dels, connEvents := l.netServer.HandlePacket(pkt.addr, pkt.data, time.Now())
			l.writeAll(out)
			deliveries = append(deliveries, dels...)
			for _, ev := range connEvents {
				if ev.Disconnected {
					disconnects = append(disconnects, realm.DisconnectEvent{ClientID: ev.ClientID})
					continue
				}
				if connect, ok := hydrateConnect(ctx, l.characters, ev, l.log); ok {
					connects = append(connects, connect)
				}
			}

		case now := <-ticker.C:
			retransmits, timeouts := l.netServer.Tick(now)
			l.writeAll(retransmits)
			for _, ev := range timeouts {
				disconnects = append(disconnects, realm.DisconnectEvent{ClientID: ev.ClientID})
			}

			l.metrics.TickRateHz.Set(float64(l.cfg.TickHz))
			l.metrics.ConnectedPlayers.WithLabelValues(l.cfg.BindAddress).Set(float64(l.netServer.ConnectionCount()))

			out := realm.Tick(ctx, l.world, realm.TickInput{
				Dt:          interval,
				Deliveries:  deliveries,
				Connects:    connects,
				Disconnects: disconnects,
			}, l.characters, l.rng, l.log)

			l.sendEgress(now, out)

			deliveries = deliveries[:0]
			connects = connects[:0]
			disconnects = disconnects[:0]
		}
	}
}

func (l *tickLoop) sendEgress(now time.Time, out []realm.OutgoingMessage) {
	for _, msg := range out {
		w := wire.NewWriter(64)
		if err := wire.EncodeEvent(w, msg.Event); err != nil {
			l.log.Error("realm: encoding outgoing event failed", "client_id", msg.ClientID, "err", err)
			continue
		}
		payload := w.Bytes()
		l.metrics.PacketSizeBytes.WithLabelValues("out").Observe(float64(len(payload)))

		var pkt netcode.OutPacket
		var err error
		if eventChannel(msg.Event) == netcode.ChannelUnreliable {
			pkt, err = l.netServer.SendUnreliable(msg.ClientID, payload)
			l.metrics.PacketsTotal.WithLabelValues("out", "unreliable").Inc()
		} else {
			pkt, err = l.netServer.SendReliable(msg.ClientID, payload, now)
			l.metrics.PacketsTotal.WithLabelValues("out", "reliable").Inc()
		}
		if err != nil {
			l.log.Warn("realm: dropping outgoing event for disconnected client", "client_id", msg.ClientID, "err", err)
			continue
		}
		l.metrics.BytesTotal.WithLabelValues("out", "payload").Add(float64(len(pkt.Data)))
		l.writeAll([]netcode.OutPacket{pkt})
	}
}

func (l *tickLoop) writeAll(packets []netcode.OutPacket) {
	for _, pkt := range packets {
		if _, err := l.pc.WriteTo(pkt.Data, pkt.Addr); err != nil {
			l.log.Warn("realm: udp write error", "addr", pkt.Addr, "err", err)
		}
	}
}

func newTickRNG(cfg config.Realm) lootRoller {
	return realm.NewRandLootRoller(time.Now().UnixNano(), cfg.LootChanceMultiplier, cfg.LootAmountMultiplier)
}
