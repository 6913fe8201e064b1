package probes

import (
	"context"
	"net"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/Muadiv/connection-down-detector/internal/model"
)

const echoData = "conndetect"

// ICMPPinger sends ICMP echo requests over raw sockets. It requires
// CAP_NET_RAW (or root); callers wrap it in a FallbackPinger for
// unprivileged environments.
type ICMPPinger struct {
	id  int
	seq uint32
}

// NewICMPPinger initializes a pinger with a process-scoped identifier.
func NewICMPPinger() *ICMPPinger {
	return &ICMPPinger{id: os.Getpid() & 0xffff}
}

// Ping sends one echo request and waits for the matching reply.
func (p *ICMPPinger) Ping(ctx context.Context, host string, timeout time.Duration) model.Outcome {
	outcome, _ := p.ping(ctx, host, timeout)
	return outcome
}

// ping also returns the underlying error so FallbackPinger can detect
// permission failures that the normalized outcome does not carry.
func (p *ICMPPinger) ping(ctx context.Context, host string, timeout time.Duration) (model.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return model.Failure(host, time.Now(), model.ErrOther), err
	}

	ipAddr, err := net.ResolveIPAddr("ip", host)
	if err != nil || ipAddr.IP == nil {
		return model.Failure(host, time.Now(), model.ErrUnreachable), err
	}

	network, protocol, requestType, replyType := icmpSettings(ipAddr.IP)
	conn, err := icmp.ListenPacket(network, "")
	if err != nil {
		return model.Failure(host, time.Now(), model.ErrOther), err
	}
	defer conn.Close()

	seq := int(atomic.AddUint32(&p.seq, 1) & 0xffff)
	msg := icmp.Message{
		Type: requestType,
		Code: 0,
		Body: &icmp.Echo{
			ID:   p.id,
			Seq:  seq,
			Data: []byte(echoData),
		},
	}

	payload, err := msg.Marshal(nil)
	if err != nil {
		return model.Failure(host, time.Now(), model.ErrOther), err
	}

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return model.Failure(host, time.Now(), model.ErrOther), err
	}

	start := time.Now()
	if _, err := conn.WriteTo(payload, ipAddr); err != nil {
		return model.Failure(host, time.Now(), model.ErrUnreachable), err
	}

	buf := make([]byte, 1500)
	for {
		if err := ctx.Err(); err != nil {
			return model.Failure(host, time.Now(), model.ErrTimeout), err
		}

		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				return model.Failure(host, time.Now(), model.ErrTimeout), err
			}
			return model.Failure(host, time.Now(), model.ErrOther), err
		}
		if peer == nil {
			continue
		}

		reply, err := icmp.ParseMessage(protocol, buf[:n])
		if err != nil {
			continue
		}
		if reply.Type != replyType {
			continue
		}
		body, ok := reply.Body.(*icmp.Echo)
		if !ok {
			continue
		}
		if body.ID != p.id || body.Seq != seq {
			continue
		}

		return model.Success(host, time.Now(), time.Since(start)), nil
	}
}

func icmpSettings(ip net.IP) (network string, protocol int, requestType icmp.Type, replyType icmp.Type) {
	if ip.To4() != nil {
		return "ip4:icmp", ipv4.ICMPTypeEcho.Protocol(), ipv4.ICMPTypeEcho, ipv4.ICMPTypeEchoReply
	}
	return "ip6:ipv6-icmp", ipv6.ICMPTypeEchoRequest.Protocol(), ipv6.ICMPTypeEchoRequest, ipv6.ICMPTypeEchoReply
}
