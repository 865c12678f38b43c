// Command courseassign computes an optimal assignment of participants
// to courses from their course choices, using parallel branch and bound
// over course constellations.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/tverron/courseassign/internal/csvio"
	"github.com/tverron/courseassign/internal/solver"
	"github.com/tverron/courseassign/pkg/model"
)

// Exit codes follow the sysexits convention.
const (
	exitNoSolution = 1
	exitDataErr    = 65
	exitNoInput    = 66
)

type exitError struct {
	code    int
	message string
}

func (e *exitError) Error() string { return e.message }

func errorf(code int, format string, args ...any) error {
	return &exitError{code: code, message: fmt.Sprintf(format, args...)}
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			slog.Error(ee.message)
			os.Exit(ee.code)
		}
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("courseassign", flag.ExitOnError)
	var (
		format           = fs.String("format", "json", "input format: json or csv")
		coursesPath      = fs.String("courses", "", "courses CSV file (with -format csv)")
		participantsPath = fs.String("participants", "", "participants CSV file (with -format csv)")
		delimiter        = fs.String("delimiter", ",", "CSV field delimiter")
		roomList         = fs.String("rooms", "", "comma-separated list of available room sizes, e.g. 15,10,10,8")
		roomsFile        = fs.String("rooms-file", "", "JSON file with available room kinds")
		threads          = fs.Int("threads", runtime.NumCPU(), "number of worker threads")
		output           = fs.String("o", "", "output file for the assignment JSON")
		exportProblem    = fs.String("export-problem", "", "write the loaded problem as JSON, e.g. to convert CSV input")
		printOut         = fs.Bool("print", false, "print the assignment to stdout in a human readable format")
		reportNoSolution = fs.Bool("report-no-solution", false, "log unsolvable subproblems to help debugging infeasible inputs")
		logLevel         = fs.String("log-level", "info", "log level: debug, info, warn or error")
	)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: courseassign [flags] [INPUT]\n\n")
		fmt.Fprintf(fs.Output(), "INPUT is the problem JSON file (with -format json).\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		return errorf(exitDataErr, "invalid log level %q", *logLevel)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *output == "" && !*printOut {
		slog.Warn("no -o file and no -print option given, assignment will not be exported anywhere")
	}

	var rooms []int
	var roomKinds []model.RoomKind
	switch {
	case *roomList != "" && *roomsFile != "":
		return errorf(exitDataErr, "-rooms and -rooms-file are mutually exclusive")
	case *roomList != "":
		var err error
		rooms, err = csvio.ParseRoomList(*roomList)
		if err != nil {
			return errorf(exitDataErr, "could not parse room sizes: %v", err)
		}
	case *roomsFile != "":
		f, err := os.Open(*roomsFile)
		if err != nil {
			return errorf(exitNoInput, "could not open rooms file: %v", err)
		}
		rooms, roomKinds, err = csvio.LoadRooms(f)
		f.Close()
		if err != nil {
			return errorf(exitDataErr, "could not read rooms file: %v", err)
		}
	}

	participants, courses, err := loadProblem(fs, *format, *coursesPath, *participantsPath, *delimiter)
	if err != nil {
		return err
	}
	if err := model.ValidateData(participants, courses); err != nil {
		return errorf(exitDataErr, "inconsistent input data: %v", err)
	}
	if len(participants) == 0 {
		return errorf(exitDataErr, "calculating course assignments needs 1 or more participants")
	}
	slog.Info("loaded course assignment problem",
		"courses", len(courses), "participants", len(participants))
	slog.Debug("course list", "courses", "\n"+csvio.CourseList(courses))

	if *exportProblem != "" {
		f, err := os.Create(*exportProblem)
		if err != nil {
			return errorf(exitDataErr, "could not open problem export file %s: %v", *exportProblem, err)
		}
		err = csvio.WriteProblem(f, participants, courses)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return errorf(exitDataErr, "could not export problem data to %s: %v", *exportProblem, err)
		}
	}

	assignment, score, found, stats := solver.Solve(courses, participants, rooms, *reportNoSolution, *threads)
	slog.Info("finished solving course assignment")
	fmt.Fprint(os.Stderr, stats)

	if !found {
		return errorf(exitNoSolution, "no feasible solution found")
	}

	quality := solver.CalculateQuality(score, participants, courses)
	slog.Info("solution found",
		"score", quality.SolutionScore,
		"theoreticalMax", quality.TheoreticalMaxScore)
	slog.Info("solution quality lack (lower is better, 0 is perfect)",
		"quality", quality.SolutionQuality,
		"theoreticalBest", quality.TheoreticalMaxQuality)

	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return errorf(exitDataErr, "could not open output file %s: %v", *output, err)
		}
		err = csvio.WriteAssignment(f, assignment)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return errorf(exitDataErr, "could not write assignment to %s: %v", *output, err)
		}
		slog.Debug("assignment written", "path", *output)
	}

	if *printOut {
		var possibleRooms []string
		if roomKinds != nil {
			possibleRooms = csvio.RoomKindNames(assignment, courses, roomKinds)
		} else if rooms != nil {
			possibleRooms = csvio.RoomSizeLists(assignment, courses, rooms)
		}
		fmt.Printf("The assignment is:\n%s", csvio.FormatAssignment(assignment, courses, participants, possibleRooms))
	}

	return nil
}

// loadProblem reads the input data in the selected format.
func loadProblem(fs *flag.FlagSet, format, coursesPath, participantsPath, delimiter string) ([]*model.Participant, []*model.Course, error) {
	switch format {
	case "csv":
		if coursesPath == "" || participantsPath == "" {
			return nil, nil, errorf(exitDataErr, "-format csv needs both -courses and -participants")
		}
		delim := []rune(delimiter)
		if len(delim) != 1 {
			return nil, nil, errorf(exitDataErr, "delimiter must be a single character")
		}
		participants, courses, err := csvio.LoadProblem(coursesPath, participantsPath, delim[0])
		if err != nil {
			return nil, nil, errorf(exitDataErr, "could not read input files: %v", err)
		}
		return participants, courses, nil
	case "json":
		inpath := fs.Arg(0)
		if inpath == "" {
			return nil, nil, errorf(exitNoInput, "no input file given")
		}
		f, err := os.Open(inpath)
		if err != nil {
			return nil, nil, errorf(exitNoInput, "could not open input file %s: %v", inpath, err)
		}
		defer f.Close()
		participants, courses, err := csvio.LoadProblemJSON(f)
		if err != nil {
			return nil, nil, errorf(exitDataErr, "could not read input file: %v", err)
		}
		return participants, courses, nil
	default:
		return nil, nil, errorf(exitDataErr, "unknown input format %q", format)
	}
}
