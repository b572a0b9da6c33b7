// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

//go:build integration

package engine_test

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/MattWindsor91/cuppa/internal/playout"
	"github.com/MattWindsor91/cuppa/internal/poll"
	"github.com/MattWindsor91/cuppa/internal/relay"
	"github.com/MattWindsor91/cuppa/internal/telnet"
	"github.com/MattWindsor91/cuppa/pkg/command"
	"github.com/MattWindsor91/cuppa/pkg/fault"
	"github.com/MattWindsor91/cuppa/pkg/response"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

var _ = Describe("Command engine over a pipe", func() {
	var (
		r, w       *os.File
		primary    *bytes.Buffer
		diagnostic *bytes.Buffer
		engine     *command.Engine
		table      command.Table
		ctx        context.Context
	)

	BeforeEach(func() {
		var err error
		r, w, err = os.Pipe()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = r.Close()
			_ = w.Close()
		})

		ctx = context.Background()
		primary = &bytes.Buffer{}
		diagnostic = &bytes.Buffer{}
		emitter := response.NewEmitter(primary, diagnostic)

		table, err = playout.NewPlayer(emitter, playout.WithLogger(quiet)).Table(playout.TableOptions{
			Rejects: []playout.Reject{{Word: "eject", Reason: "did you mean ejct?"}},
		})
		Expect(err).NotTo(HaveOccurred())

		engine, err = command.NewEngine(r, emitter,
			command.WithReadiness(poll.Ready(r)),
			command.WithLogger(quiet),
		)
		Expect(err).NotTo(HaveOccurred())
	})

	It("stays idle without reading until a line arrives", func() {
		Expect(engine.Check(ctx, table)).To(Equal(command.Idle))
		Expect(primary.String()).To(BeEmpty())

		_, err := w.WriteString("eject\n")
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() command.Outcome {
			outcome, _ := engine.Check(ctx, table)
			return outcome
		}).Should(Equal(command.Failed))
		Expect(primary.String()).To(Equal("nope COMMAND_REJECTED did you mean ejct?\n"))
		Expect(diagnostic.String()).To(BeEmpty())
	})

	It("handles lines that arrive together without waiting for the next poll", func() {
		_, err := w.WriteString("ping\nplay\n")
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() command.Outcome {
			outcome, _ := engine.Check(ctx, table)
			return outcome
		}).Should(Equal(command.Suppressed))

		outcome, err := engine.Check(ctx, table)
		Expect(outcome).To(Equal(command.Failed))
		Expect(fault.Is(err, fault.NoFile)).To(BeTrue())
	})

	It("reports the end of input once the writer closes", func() {
		Expect(w.Close()).To(Succeed())

		Eventually(func() command.Outcome {
			outcome, _ := engine.Check(ctx, table)
			return outcome
		}).Should(Equal(command.EndOfInput))
		Expect(primary.String()).To(BeEmpty())
	})
})

var _ = Describe("Playout sessions over TCP with propagation", func() {
	var (
		ctx       context.Context
		cancel    context.CancelFunc
		server    *telnet.Server
		forwarded chan string
		track     string
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		DeferCleanup(cancel)

		track = filepath.Join(GinkgoT().TempDir(), "track.mp3")
		Expect(os.WriteFile(track, []byte("ID3"), 0o600)).To(Succeed())

		// The cooperating process: collects every forwarded line.
		coop, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = coop.Close() })

		forwarded = make(chan string, 16)
		go func() {
			defer GinkgoRecover()
			conn, acceptErr := coop.Accept()
			if acceptErr != nil {
				return
			}
			defer func() { _ = conn.Close() }()
			lines := bufio.NewScanner(conn)
			for lines.Scan() {
				forwarded <- lines.Text()
			}
		}()

		propagation, err := relay.Open(ctx, "tcp://"+coop.Addr().String(),
			relay.WithBackoff(time.Millisecond), relay.WithLogger(quiet))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = propagation.Close() })

		session := func(ctx context.Context, conn *telnet.Conn) error {
			emitter := response.NewEmitter(conn, io.Discard)
			player := playout.NewPlayer(emitter, playout.WithLogger(quiet))
			table, tableErr := player.Table(playout.TableOptions{Propagate: true})
			if tableErr != nil {
				return tableErr
			}
			engine, engineErr := command.NewEngine(conn, emitter,
				command.WithPropagation(propagation),
				command.WithLogger(quiet),
			)
			if engineErr != nil {
				return engineErr
			}
			for !player.Done() {
				outcome, handleErr := engine.Handle(ctx, table)
				if outcome == command.EndOfInput || fault.IsFatal(handleErr) {
					return nil
				}
			}
			return nil
		}

		server = telnet.NewServer("127.0.0.1:0", session, telnet.WithLogger(quiet))
		done := make(chan error, 1)
		go func() { done <- server.Run(ctx) }()
		DeferCleanup(func() {
			cancel()
			Eventually(done).Should(Receive(BeNil()))
		})
		Eventually(server.Addr).ShouldNot(BeEmpty())
	})

	It("acknowledges player words and forwards the rest", func() {
		conn, err := net.Dial("tcp", server.Addr())
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = conn.Close() }()
		replies := bufio.NewReader(conn)

		send := func(line string) {
			_, writeErr := io.WriteString(conn, line+"\n")
			Expect(writeErr).NotTo(HaveOccurred())
		}
		expectReply := func(want string) {
			Expect(conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
			got, readErr := replies.ReadString('\n')
			Expect(readErr).NotTo(HaveOccurred())
			Expect(got).To(Equal(want + "\n"))
		}

		send("load " + track)
		expectReply("stat stopped")
		expectReply("okay load " + track)

		send("fade   out slowly ")
		Eventually(forwarded).Should(Receive(Equal("fade out slowly")))

		send("play extra")
		expectReply("what UNEXPECTED_ARGUMENT expecting no argument, got one")

		send("seek")
		expectReply("what MISSING_ARGUMENT expecting an argument, didn't get one")

		send("quit")
		expectReply("okay quit")

		Expect(conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
		_, err = replies.ReadString('\n')
		Expect(err).To(MatchError(io.EOF))
	})
})
